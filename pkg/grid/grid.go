package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/tilegrid/pkg/errors"
)

// Default grid dimensions used by new projects.
const (
	DefaultColumns = 8
	DefaultMaxRows = 4
)

// Grid is the addressable cell space [0,Columns) × [0,MaxRows).
// It is fixed for the lifetime of an editing session.
type Grid struct {
	Columns int `json:"columns" toml:"columns" yaml:"columns" bson:"columns"`
	MaxRows int `json:"rows" toml:"rows" yaml:"rows" bson:"rows"`
}

// New returns a grid with the given dimensions.
// Both dimensions must be positive.
func New(columns, maxRows int) (Grid, error) {
	g := Grid{Columns: columns, MaxRows: maxRows}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Default returns the 8×4 grid.
func Default() Grid {
	return Grid{Columns: DefaultColumns, MaxRows: DefaultMaxRows}
}

// Validate reports an INVALID_GRID error for non-positive dimensions.
func (g Grid) Validate() error {
	if g.Columns <= 0 || g.MaxRows <= 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "grid must have positive dimensions, got %dx%d", g.Columns, g.MaxRows)
	}
	return nil
}

// Cells returns the number of addressable cells.
func (g Grid) Cells() int { return g.Columns * g.MaxRows }

// String returns the grid size as "COLUMNSxROWS".
func (g Grid) String() string { return fmt.Sprintf("%dx%d", g.Columns, g.MaxRows) }

// Contains reports whether c is an addressable cell.
func (g Grid) Contains(c Cell) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < g.Columns && c.Row < g.MaxRows
}

// Fits reports whether a footprint placed at origin lies entirely inside the grid.
func (g Grid) Fits(origin Cell, fp Footprint) bool {
	return origin.Col >= 0 &&
		origin.Row >= 0 &&
		origin.Col+fp.Width <= g.Columns &&
		origin.Row+fp.Height <= g.MaxRows
}

// FitsRect is Fits for a rectangle.
func (g Grid) FitsRect(r Rect) bool { return g.Fits(r.Origin, r.Size) }

// Clamp moves origin the minimum distance needed for fp to lie inside the grid.
// A footprint larger than the grid is pinned to the top-left corner.
func (g Grid) Clamp(origin Cell, fp Footprint) Cell {
	return Cell{
		Col: clampInt(origin.Col, 0, g.Columns-fp.Width),
		Row: clampInt(origin.Row, 0, g.MaxRows-fp.Height),
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Point is a continuous position in grid-local pixels.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Quantize maps a continuous position to the cell whose top-left corner is
// nearest at or below the position on each axis: floor(axis / (cellSize+spacing)).
// The result is not clamped; positions left of or above the grid yield
// negative coordinates. A non-positive pitch yields the zero cell.
func Quantize(p Point, cellSize, spacing float64) Cell {
	pitch := cellSize + spacing
	if pitch <= 0 {
		return Cell{}
	}
	return Cell{
		Col: int(math.Floor(p.X / pitch)),
		Row: int(math.Floor(p.Y / pitch)),
	}
}

// CellPosition is the inverse of Quantize: the top-left pixel of c.
func CellPosition(c Cell, cellSize, spacing float64) Point {
	pitch := cellSize + spacing
	return Point{X: float64(c.Col) * pitch, Y: float64(c.Row) * pitch}
}

// Cell addresses a single grid cell.
type Cell struct {
	Col int `json:"col" toml:"col" yaml:"col" bson:"col"`
	Row int `json:"row" toml:"row" yaml:"row" bson:"row"`
}

// Offset returns c translated by (dc, dr).
func (c Cell) Offset(dc, dr int) Cell { return Cell{Col: c.Col + dc, Row: c.Row + dr} }

// String returns the cell as "(col,row)".
func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Col, c.Row) }

// Footprint is a tile size in cells. The engine treats it as an opaque pair.
type Footprint struct {
	Width  int `json:"width" toml:"width" yaml:"width" bson:"width"`
	Height int `json:"height" toml:"height" yaml:"height" bson:"height"`
}

// Valid reports whether both dimensions are positive.
func (f Footprint) Valid() bool { return f.Width > 0 && f.Height > 0 }

// Area returns the number of cells covered.
func (f Footprint) Area() int { return f.Width * f.Height }

// String returns the footprint as "WxH".
func (f Footprint) String() string { return fmt.Sprintf("%dx%d", f.Width, f.Height) }

// ParseFootprint parses "WxH" (for example "2x1").
func ParseFootprint(s string) (Footprint, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Footprint{}, errors.New(errors.ErrCodeInvalidInput, "footprint %q must look like WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Footprint{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "footprint width %q", w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Footprint{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "footprint height %q", h)
	}
	fp := Footprint{Width: width, Height: height}
	if !fp.Valid() {
		return Footprint{}, errors.New(errors.ErrCodeInvalidInput, "footprint %q must be positive", s)
	}
	return fp, nil
}

// ParseCell parses "col,row" (for example "3,1").
func ParseCell(s string) (Cell, error) {
	c, r, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Cell{}, errors.New(errors.ErrCodeInvalidInput, "cell %q must look like col,row", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return Cell{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "cell column %q", c)
	}
	row, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return Cell{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "cell row %q", r)
	}
	return Cell{Col: col, Row: row}, nil
}

// Rect is a footprint anchored at an origin cell.
type Rect struct {
	Origin Cell
	Size   Footprint
}

// RectAt builds a Rect.
func RectAt(origin Cell, fp Footprint) Rect { return Rect{Origin: origin, Size: fp} }

// Left, Top, Right and Bottom return the half-open bounds [Left,Right) × [Top,Bottom).
func (r Rect) Left() int   { return r.Origin.Col }
func (r Rect) Top() int    { return r.Origin.Row }
func (r Rect) Right() int  { return r.Origin.Col + r.Size.Width }
func (r Rect) Bottom() int { return r.Origin.Row + r.Size.Height }

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool { return r.Size.Width <= 0 || r.Size.Height <= 0 }

// Cells returns every cell covered by r in row-major order.
func (r Rect) Cells() []Cell {
	if r.Empty() {
		return nil
	}
	cells := make([]Cell, 0, r.Size.Area())
	for row := r.Top(); row < r.Bottom(); row++ {
		for col := r.Left(); col < r.Right(); col++ {
			cells = append(cells, Cell{Col: col, Row: row})
		}
	}
	return cells
}

// String returns the rectangle as "WxH@(col,row)".
func (r Rect) String() string { return r.Size.String() + "@" + r.Origin.String() }

// Overlaps reports whether two rectangles share at least one cell.
// Rectangles that only touch along an edge do not overlap.
func Overlaps(a, b Rect) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	return a.Left() < b.Right() && b.Left() < a.Right() &&
		a.Top() < b.Bottom() && b.Top() < a.Bottom()
}

// Overlaps is the method form of the package-level Overlaps.
func (r Rect) Overlaps(o Rect) bool { return Overlaps(r, o) }
