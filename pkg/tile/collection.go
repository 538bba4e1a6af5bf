package tile

import (
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
)

// CloneAll returns a deep copy of tiles.
func CloneAll(tiles []Tile) []Tile {
	if tiles == nil {
		return nil
	}
	out := make([]Tile, len(tiles))
	for i, t := range tiles {
		out[i] = t.Clone()
	}
	return out
}

// EqualAll reports whether two collections hold equal tiles in the same order.
func EqualAll(a, b []Tile) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Index maps tile ids to their position in tiles.
func Index(tiles []Tile) map[string]int {
	idx := make(map[string]int, len(tiles))
	for i, t := range tiles {
		idx[t.ID] = i
	}
	return idx
}

// Find returns the position of id in tiles, or -1.
func Find(tiles []Tile, id string) int {
	for i, t := range tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// UnplacedIDs returns the ids of tiles without an origin, in collection order.
func UnplacedIDs(tiles []Tile) []string {
	var ids []string
	for _, t := range tiles {
		if !t.Placed() {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// ValidateAll checks every tile and rejects duplicate ids.
func ValidateAll(tiles []Tile) error {
	seen := make(map[string]bool, len(tiles))
	for _, t := range tiles {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return errors.New(errors.ErrCodeInvalidTile, "duplicate tile id %q", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Occupy builds an occupancy table from every placed tile. It stops at the
// first tile that leaves the grid or overlaps an earlier one and reports it
// with an INVARIANT_VIOLATED error.
func Occupy(g grid.Grid, tiles []Tile) (*grid.Occupancy, error) {
	occ := grid.NewOccupancy(g)
	for _, t := range tiles {
		r, ok := t.Rect()
		if !ok {
			continue
		}
		if !g.FitsRect(r) {
			return nil, errors.New(errors.ErrCodeInvariantViolated, "tile %s at %s leaves the %s grid", t.ID, r, g)
		}
		if !occ.Reserve(t.ID, r) {
			return nil, errors.New(errors.ErrCodeInvariantViolated, "tile %s at %s overlaps %s", t.ID, r, firstOwner(occ, r))
		}
	}
	return occ, nil
}

func firstOwner(occ *grid.Occupancy, r grid.Rect) string {
	for _, c := range r.Cells() {
		if id := occ.Owner(c); id != "" {
			return id
		}
	}
	return ""
}

// CheckInvariant reports whether every placed tile lies within g and no two
// placed tiles overlap.
func CheckInvariant(g grid.Grid, tiles []Tile) error {
	_, err := Occupy(g, tiles)
	return err
}
