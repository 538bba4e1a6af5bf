// Package displace computes where tiles go when a dragged tile lands on them.
//
// Given a dragged tile and a candidate target origin, [Resolve] finds a new
// origin for every other tile whose committed rectangle overlaps the dragged
// tile's footprint at the target. It never mutates its input: the result is a
// speculative map that a drag session may later commit.
//
// # Candidate Order
//
// Displaced tiles are processed in collection order. For each tile D the
// first free candidate wins:
//
//  1. Swap: D at the dragged tile's committed origin.
//  2. Shift right: D one column to the right of its own origin.
//  3. Shift down: the next row, scanning columns left to right.
//  4. Scan: row-major first-fit over the whole grid.
//
// A candidate is free when it lies inside the grid and does not overlap the
// dragged tile at the target, any tile that is not displaced, or any
// displaced tile resolved earlier in the same round. When no candidate is
// free, D keeps its committed origin, is listed in [Resolution.Blocked] and
// the resolution is invalid. Swap only considers the dragged tile's home; it
// never searches for a global rearrangement.
//
// # Caching
//
// Resolution runs on every pointer sample of a drag, so [Resolver] caches
// results per (dragged id, target) for the lifetime of one drag session.
package displace

import (
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// Resolution is the speculative outcome of dropping a tile at a target.
type Resolution struct {
	// Dragged is the id of the dragged tile.
	Dragged string
	// Target is the origin the dragged tile would take.
	Target grid.Cell
	// Origins maps every displaced tile to its proposed origin. Blocked tiles
	// map to their unchanged committed origin.
	Origins map[string]grid.Cell
	// Displaced lists the displaced tiles in collection order.
	Displaced []string
	// Blocked lists displaced tiles that found no free candidate.
	Blocked []string
	// Valid is false when the target leaves the grid or any tile is blocked.
	Valid bool
}

// Clone returns a deep copy of r.
func (r Resolution) Clone() Resolution {
	out := r
	if r.Origins != nil {
		out.Origins = make(map[string]grid.Cell, len(r.Origins))
		for id, c := range r.Origins {
			out.Origins[id] = c
		}
	}
	out.Displaced = append([]string(nil), r.Displaced...)
	out.Blocked = append([]string(nil), r.Blocked...)
	return out
}

// Moves returns the displaced tiles whose proposed origin differs from their
// committed one, keyed by id.
func (r Resolution) Moves(tiles []tile.Tile) map[string]grid.Cell {
	moves := make(map[string]grid.Cell)
	for _, t := range tiles {
		c, ok := r.Origins[t.ID]
		if !ok || (t.Origin != nil && *t.Origin == c) {
			continue
		}
		moves[t.ID] = c
	}
	return moves
}

// Resolve computes the displacement caused by dropping draggedID at target.
//
// It returns a NOT_FOUND error when draggedID is not in tiles. A target at
// which the dragged footprint does not fit yields an invalid resolution with
// no displaced tiles.
func Resolve(g grid.Grid, tiles []tile.Tile, draggedID string, target grid.Cell) (Resolution, error) {
	di := tile.Find(tiles, draggedID)
	if di < 0 {
		return Resolution{}, errors.New(errors.ErrCodeNotFound, "tile %q not found", draggedID)
	}
	dragged := tiles[di]

	res := Resolution{
		Dragged: draggedID,
		Target:  target,
		Origins: make(map[string]grid.Cell),
	}
	if !g.Fits(target, dragged.Footprint) {
		return res, nil
	}
	res.Valid = true

	dropRect := grid.RectAt(target, dragged.Footprint)
	occ := grid.NewOccupancy(g)
	occ.Reserve(draggedID, dropRect)

	var displaced []int
	for i, t := range tiles {
		if i == di {
			continue
		}
		r, ok := t.Rect()
		if !ok {
			continue
		}
		if r.Overlaps(dropRect) {
			displaced = append(displaced, i)
			continue
		}
		occ.Reserve(t.ID, r)
	}

	for _, i := range displaced {
		d := tiles[i]
		res.Displaced = append(res.Displaced, d.ID)
		if c, ok := relocate(occ, d, dragged.Origin); ok {
			occ.Reserve(d.ID, grid.RectAt(c, d.Footprint))
			res.Origins[d.ID] = c
			continue
		}
		res.Origins[d.ID] = *d.Origin
		res.Blocked = append(res.Blocked, d.ID)
		res.Valid = false
	}
	return res, nil
}

// relocate walks the candidate list for d and returns the first free origin.
func relocate(occ *grid.Occupancy, d tile.Tile, home *grid.Cell) (grid.Cell, bool) {
	fp := d.Footprint
	free := func(c grid.Cell) bool { return occ.Free(grid.RectAt(c, fp)) }

	if home != nil && free(*home) {
		return *home, true
	}
	if right := d.Origin.Offset(1, 0); free(right) {
		return right, true
	}
	g := occ.Grid()
	below := d.Origin.Row + 1
	for col := 0; col+fp.Width <= g.Columns; col++ {
		if c := (grid.Cell{Col: col, Row: below}); free(c) {
			return c, true
		}
	}
	return occ.FirstFit(fp)
}
