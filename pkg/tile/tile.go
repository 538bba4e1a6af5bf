// Package tile defines the placeable unit of a board and helpers for working
// with tile collections.
//
// A [Tile] has a stable id, a footprint in cells and an optional origin. A nil
// origin means the tile still needs auto-placement. Placement packages never
// look at anything else: they do not know why a tile has a given size.
//
// [Kind] is a convenience for callers that build tiles from control types
// (buttons, faders). Engine packages never branch on it.
package tile

import (
	"fmt"
	"strings"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
)

// Tile is a placeable unit on a grid.
type Tile struct {
	ID        string
	Footprint grid.Footprint
	Origin    *grid.Cell
}

// New returns an unplaced tile.
func New(id string, fp grid.Footprint) Tile {
	return Tile{ID: id, Footprint: fp}
}

// At returns a copy of t placed at c.
func (t Tile) At(c grid.Cell) Tile {
	t.Origin = &c
	return t
}

// Unplaced returns a copy of t without an origin.
func (t Tile) Unplaced() Tile {
	t.Origin = nil
	return t
}

// Placed reports whether t has an origin.
func (t Tile) Placed() bool { return t.Origin != nil }

// Rect returns the rectangle covered by t. ok is false for unplaced tiles.
func (t Tile) Rect() (r grid.Rect, ok bool) {
	if t.Origin == nil {
		return grid.Rect{}, false
	}
	return grid.RectAt(*t.Origin, t.Footprint), true
}

// Clone returns a copy of t that does not share its origin pointer.
func (t Tile) Clone() Tile {
	if t.Origin != nil {
		c := *t.Origin
		t.Origin = &c
	}
	return t
}

// Equal reports whether two tiles have the same id, footprint and origin.
func (t Tile) Equal(o Tile) bool {
	if t.ID != o.ID || t.Footprint != o.Footprint {
		return false
	}
	if t.Origin == nil || o.Origin == nil {
		return t.Origin == nil && o.Origin == nil
	}
	return *t.Origin == *o.Origin
}

// String returns a compact description such as "fader-1 1x2@(3,0)".
func (t Tile) String() string {
	if t.Origin == nil {
		return fmt.Sprintf("%s %s@unplaced", t.ID, t.Footprint)
	}
	return fmt.Sprintf("%s %s@%s", t.ID, t.Footprint, t.Origin)
}

// Validate checks the id and footprint of a single tile.
func (t Tile) Validate() error {
	if err := errors.ValidateTileID(t.ID); err != nil {
		return err
	}
	if !t.Footprint.Valid() {
		return errors.New(errors.ErrCodeInvalidTile, "tile %s has non-positive footprint %s", t.ID, t.Footprint)
	}
	return nil
}

// Kind is a control type with a conventional footprint.
type Kind string

// Control kinds.
const (
	KindButton          Kind = "button"
	KindSmallButton     Kind = "small_button"
	KindFaderVertical   Kind = "fader_vertical"
	KindFaderHorizontal Kind = "fader_horizontal"
)

// Kinds lists every known kind.
var Kinds = []Kind{KindButton, KindSmallButton, KindFaderVertical, KindFaderHorizontal}

var kindFootprints = map[Kind]grid.Footprint{
	KindButton:          {Width: 2, Height: 1},
	KindSmallButton:     {Width: 1, Height: 1},
	KindFaderVertical:   {Width: 1, Height: 2},
	KindFaderHorizontal: {Width: 2, Height: 1},
}

// Footprint returns the conventional footprint of k. ok is false for unknown kinds.
func (k Kind) Footprint() (grid.Footprint, bool) {
	fp, ok := kindFootprints[k]
	return fp, ok
}

// ParseKind accepts kind names case-insensitively, with '-' or '_' separators.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := kindFootprints[k]; !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown tile kind %q", s)
	}
	return k, nil
}
