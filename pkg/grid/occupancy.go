package grid

// Occupancy records which tile owns each cell of a grid.
//
// It is a derived structure: allocators and resolvers build one from the
// committed tile rectangles, reserve candidate placements into it, and throw it
// away afterwards. Reserving never succeeds for a rectangle that leaves the
// grid or touches an owned cell, so an Occupancy can only describe states that
// satisfy the no-overlap and in-bounds invariant.
type Occupancy struct {
	grid   Grid
	owners []string
	used   int
}

// NewOccupancy returns an empty occupancy table for g.
func NewOccupancy(g Grid) *Occupancy {
	n := g.Cells()
	if n < 0 {
		n = 0
	}
	return &Occupancy{grid: g, owners: make([]string, n)}
}

// Grid returns the grid the table covers.
func (o *Occupancy) Grid() Grid { return o.grid }

func (o *Occupancy) index(c Cell) int { return c.Row*o.grid.Columns + c.Col }

// Owner returns the id owning c, or "" when c is free or out of bounds.
func (o *Occupancy) Owner(c Cell) string {
	if !o.grid.Contains(c) {
		return ""
	}
	return o.owners[o.index(c)]
}

// Free reports whether r lies inside the grid and none of its cells are owned.
func (o *Occupancy) Free(r Rect) bool {
	if r.Empty() || !o.grid.FitsRect(r) {
		return false
	}
	for row := r.Top(); row < r.Bottom(); row++ {
		base := row * o.grid.Columns
		for col := r.Left(); col < r.Right(); col++ {
			if o.owners[base+col] != "" {
				return false
			}
		}
	}
	return true
}

// Reserve assigns every cell of r to id. It returns false, leaving the table
// unchanged, when r is not Free.
func (o *Occupancy) Reserve(id string, r Rect) bool {
	if id == "" || !o.Free(r) {
		return false
	}
	for row := r.Top(); row < r.Bottom(); row++ {
		base := row * o.grid.Columns
		for col := r.Left(); col < r.Right(); col++ {
			o.owners[base+col] = id
		}
	}
	o.used += r.Size.Area()
	return true
}

// Release frees every cell owned by id.
func (o *Occupancy) Release(id string) {
	if id == "" {
		return
	}
	for i, owner := range o.owners {
		if owner == id {
			o.owners[i] = ""
			o.used--
		}
	}
}

// Used returns the number of owned cells.
func (o *Occupancy) Used() int { return o.used }

// FreeCells returns the number of unowned cells.
func (o *Occupancy) FreeCells() int { return len(o.owners) - o.used }

// Clone returns an independent copy of the table.
func (o *Occupancy) Clone() *Occupancy {
	owners := make([]string, len(o.owners))
	copy(owners, o.owners)
	return &Occupancy{grid: o.grid, owners: owners, used: o.used}
}

// FirstFit scans rows top to bottom and, within each row, columns left to
// right, returning the first origin where fp is Free. Columns beyond
// Columns-Width are never tried.
func (o *Occupancy) FirstFit(fp Footprint) (Cell, bool) {
	if !fp.Valid() {
		return Cell{}, false
	}
	for row := 0; row+fp.Height <= o.grid.MaxRows; row++ {
		for col := 0; col+fp.Width <= o.grid.Columns; col++ {
			c := Cell{Col: col, Row: row}
			if o.Free(RectAt(c, fp)) {
				return c, true
			}
		}
	}
	return Cell{}, false
}
