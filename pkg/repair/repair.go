// Package repair moves tiles that violate the current grid back into it.
//
// Projects saved under a larger grid (or edited by hand) can carry origins
// that leave the grid or overlap each other. [Repair] keeps every valid
// placement, first-fits the rest, and clears the origin of tiles that still
// have nowhere to go so the next auto-pack can report them. Running it on an
// already-valid collection changes nothing.
package repair

import (
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/pack"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// Report summarizes what a Repair call did. Every list is in collection order.
type Report struct {
	// Kept lists placed tiles whose origin was already valid.
	Kept []string
	// Moved lists tiles relocated to a new in-bounds origin.
	Moved []string
	// Cleared lists tiles whose invalid origin was removed because no cell fit.
	Cleared []string
}

// Changed reports whether any origin was modified.
func (r Report) Changed() bool { return len(r.Moved) > 0 || len(r.Cleared) > 0 }

// Repair returns a copy of tiles in which every placed tile lies inside g and
// no two placed tiles overlap.
//
// Placed tiles that fit and do not overlap an earlier kept tile are kept and
// reserved first. Every other placed tile is relocated by row-major first-fit
// in collection order, or left without an origin when no cell fits it. Tiles
// that had no origin are not touched.
func Repair(g grid.Grid, tiles []tile.Tile) ([]tile.Tile, Report) {
	out := tile.CloneAll(tiles)
	occ, pending := pack.Reserve(g, out)

	var rep Report
	invalid := make(map[int]bool, len(pending))
	for _, i := range pending {
		if out[i].Placed() {
			invalid[i] = true
		}
	}
	for i, t := range out {
		if t.Placed() && !invalid[i] {
			rep.Kept = append(rep.Kept, t.ID)
		}
	}

	for _, i := range pending {
		if !invalid[i] {
			continue
		}
		out[i].Origin = nil
		c, ok := pack.FirstFit(occ, out[i].Footprint)
		if !ok {
			rep.Cleared = append(rep.Cleared, out[i].ID)
			continue
		}
		occ.Reserve(out[i].ID, grid.RectAt(c, out[i].Footprint))
		out[i].Origin = &c
		rep.Moved = append(rep.Moved, out[i].ID)
	}
	return out, rep
}
