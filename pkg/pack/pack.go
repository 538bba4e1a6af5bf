// Package pack implements deterministic first-fit placement of tiles on a grid.
//
// [Place] honors explicit origins that are still valid and assigns every
// other tile by row-major first-fit, in collection order. It never reorders
// tiles to improve density, so the same input always produces the same
// layout. Tiles that do not fit anywhere keep a nil origin and are reported in
// [Result.Unplaced]; callers surface that as a capacity error.
//
// Example:
//
//	res := pack.Place(grid.Default(), tiles)
//	if !res.Complete() {
//	    return errors.New(errors.ErrCodeCapacityExceeded, "no room for %v", res.Unplaced)
//	}
//	tiles = res.Tiles
package pack

import (
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// Result is the outcome of a Place call.
type Result struct {
	// Tiles is the placed collection, in input order.
	Tiles []tile.Tile
	// Placed lists tiles that received a new origin, in input order.
	Placed []string
	// Unplaced lists tiles left without an origin because no cell fit them.
	Unplaced []string
}

// Complete reports whether every tile has an origin.
func (r Result) Complete() bool { return len(r.Unplaced) == 0 }

// Place assigns origins to every tile that needs one.
//
// Explicit origins that fit inside g and do not overlap an explicit origin
// honored earlier in the collection are kept as-is. Every other tile (nil
// origin, out of bounds, or conflicting) is placed by row-major first-fit in
// input order. The input slice is not modified.
func Place(g grid.Grid, tiles []tile.Tile) Result {
	out := tile.CloneAll(tiles)
	occ, pending := Reserve(g, out)

	res := Result{Tiles: out}
	for _, i := range pending {
		if c, ok := FirstFit(occ, out[i].Footprint); ok {
			occ.Reserve(out[i].ID, grid.RectAt(c, out[i].Footprint))
			out[i].Origin = &c
			res.Placed = append(res.Placed, out[i].ID)
			continue
		}
		out[i].Origin = nil
		res.Unplaced = append(res.Unplaced, out[i].ID)
	}
	return res
}

// Reserve builds an occupancy table from the explicit origins in tiles that
// can be honored, in collection order. It returns the indexes of the tiles
// that still need placement: those without an origin and those whose origin
// leaves the grid or collides with an earlier reservation.
func Reserve(g grid.Grid, tiles []tile.Tile) (*grid.Occupancy, []int) {
	occ := grid.NewOccupancy(g)
	var pending []int
	for i, t := range tiles {
		r, ok := t.Rect()
		if !ok || !occ.Reserve(t.ID, r) {
			pending = append(pending, i)
		}
	}
	return occ, pending
}

// FirstFit returns the first free origin for fp in row-major order: rows
// 0..MaxRows, and within each row columns 0..Columns-Width.
func FirstFit(occ *grid.Occupancy, fp grid.Footprint) (grid.Cell, bool) {
	return occ.FirstFit(fp)
}

// CanFit reports whether a tile with footprint fp could be added to the
// committed collection tiles without moving anything. It does not mutate tiles.
func CanFit(g grid.Grid, tiles []tile.Tile, fp grid.Footprint) bool {
	occ, _ := Reserve(g, tiles)
	_, ok := FirstFit(occ, fp)
	return ok
}
