package grid

import (
	"testing"

	"github.com/matzehuels/tilegrid/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cols    int
		rows    int
		wantErr bool
	}{
		{"default", 8, 4, false},
		{"single cell", 1, 1, false},
		{"zero columns", 0, 4, true},
		{"negative rows", 8, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cols, tt.rows)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%d, %d) error = %v, wantErr %v", tt.cols, tt.rows, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidGrid) {
				t.Errorf("New() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidGrid)
			}
			if err == nil && g.Cells() != tt.cols*tt.rows {
				t.Errorf("Cells() = %d, want %d", g.Cells(), tt.cols*tt.rows)
			}
		})
	}
}

func TestFits(t *testing.T) {
	g := Default()
	tests := []struct {
		name   string
		origin Cell
		fp     Footprint
		want   bool
	}{
		{"top-left button", Cell{0, 0}, Footprint{2, 1}, true},
		{"bottom-right small", Cell{7, 3}, Footprint{1, 1}, true},
		{"button past right edge", Cell{7, 3}, Footprint{2, 1}, false},
		{"fader past bottom", Cell{0, 3}, Footprint{1, 2}, false},
		{"fader at bottom", Cell{0, 2}, Footprint{1, 2}, true},
		{"negative col", Cell{-1, 0}, Footprint{1, 1}, false},
		{"negative row", Cell{0, -1}, Footprint{1, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Fits(tt.origin, tt.fp); got != tt.want {
				t.Errorf("Fits(%v, %v) = %v, want %v", tt.origin, tt.fp, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"identical", RectAt(Cell{0, 0}, Footprint{2, 1}), RectAt(Cell{0, 0}, Footprint{2, 1}), true},
		{"partial horizontal", RectAt(Cell{0, 0}, Footprint{2, 1}), RectAt(Cell{1, 0}, Footprint{2, 1}), true},
		{"touching horizontal", RectAt(Cell{0, 0}, Footprint{2, 1}), RectAt(Cell{2, 0}, Footprint{1, 1}), false},
		{"touching vertical", RectAt(Cell{0, 0}, Footprint{1, 2}), RectAt(Cell{0, 2}, Footprint{1, 1}), false},
		{"fader crosses button", RectAt(Cell{1, 0}, Footprint{1, 2}), RectAt(Cell{0, 1}, Footprint{2, 1}), true},
		{"diagonal", RectAt(Cell{0, 0}, Footprint{1, 1}), RectAt(Cell{1, 1}, Footprint{1, 1}), false},
		{"empty never overlaps", RectAt(Cell{0, 0}, Footprint{0, 0}), RectAt(Cell{0, 0}, Footprint{2, 2}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name     string
		p        Point
		cellSize float64
		spacing  float64
		want     Cell
	}{
		{"origin", Point{0, 0}, 64, 8, Cell{0, 0}},
		{"inside first cell", Point{70, 71.9}, 64, 8, Cell{0, 0}},
		{"exact pitch", Point{72, 144}, 64, 8, Cell{1, 2}},
		{"inside spacing gap", Point{66, 0}, 64, 8, Cell{0, 0}},
		{"negative floors down", Point{-1, -73}, 64, 8, Cell{-1, -2}},
		{"no spacing", Point{130, 10}, 64, 0, Cell{2, 0}},
		{"zero pitch", Point{100, 100}, 0, 0, Cell{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantize(tt.p, tt.cellSize, tt.spacing); got != tt.want {
				t.Errorf("Quantize(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestCellPositionRoundTrip(t *testing.T) {
	for _, c := range []Cell{{0, 0}, {3, 1}, {7, 3}} {
		p := CellPosition(c, 64, 8)
		if got := Quantize(p, 64, 8); got != c {
			t.Errorf("Quantize(CellPosition(%v)) = %v", c, got)
		}
	}
}

func TestClamp(t *testing.T) {
	g := Default()
	tests := []struct {
		name   string
		origin Cell
		fp     Footprint
		want   Cell
	}{
		{"inside", Cell{3, 1}, Footprint{2, 1}, Cell{3, 1}},
		{"past right", Cell{7, 0}, Footprint{2, 1}, Cell{6, 0}},
		{"past bottom", Cell{0, 3}, Footprint{1, 2}, Cell{0, 2}},
		{"negative", Cell{-4, -2}, Footprint{1, 1}, Cell{0, 0}},
		{"far away", Cell{100, 100}, Footprint{2, 1}, Cell{6, 3}},
		{"wider than grid", Cell{3, 0}, Footprint{9, 1}, Cell{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Clamp(tt.origin, tt.fp); got != tt.want {
				t.Errorf("Clamp(%v, %v) = %v, want %v", tt.origin, tt.fp, got, tt.want)
			}
		})
	}
}

func TestParseFootprint(t *testing.T) {
	tests := []struct {
		input   string
		want    Footprint
		wantErr bool
	}{
		{"2x1", Footprint{2, 1}, false},
		{" 1X2 ", Footprint{1, 2}, false},
		{"2", Footprint{}, true},
		{"0x1", Footprint{}, true},
		{"ax1", Footprint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFootprint(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFootprint(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFootprint(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCell(t *testing.T) {
	got, err := ParseCell("3, 1")
	if err != nil {
		t.Fatalf("ParseCell() error: %v", err)
	}
	if got != (Cell{3, 1}) {
		t.Errorf("ParseCell() = %v, want (3,1)", got)
	}
	if _, err := ParseCell("3"); err == nil {
		t.Error("ParseCell(\"3\") should fail")
	}
}

func TestRectCells(t *testing.T) {
	r := RectAt(Cell{2, 1}, Footprint{2, 2})
	want := []Cell{{2, 1}, {3, 1}, {2, 2}, {3, 2}}
	got := r.Cells()
	if len(got) != len(want) {
		t.Fatalf("Cells() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Cells()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if r.String() != "2x2@(2,1)" {
		t.Errorf("String() = %q", r.String())
	}
}
