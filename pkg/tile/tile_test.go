package tile

import (
	"testing"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
)

func TestTileAtAndClone(t *testing.T) {
	base := New("a", grid.Footprint{Width: 2, Height: 1})
	if base.Placed() {
		t.Fatal("New() tile should be unplaced")
	}

	placed := base.At(grid.Cell{Col: 3, Row: 1})
	if !placed.Placed() || *placed.Origin != (grid.Cell{Col: 3, Row: 1}) {
		t.Fatalf("At() = %v", placed)
	}
	if base.Placed() {
		t.Error("At() should not modify the receiver")
	}

	clone := placed.Clone()
	clone.Origin.Col = 5
	if placed.Origin.Col != 3 {
		t.Error("Clone() should not share the origin pointer")
	}

	if r, ok := placed.Rect(); !ok || r.String() != "2x1@(3,1)" {
		t.Errorf("Rect() = %v, %v", r, ok)
	}
	if _, ok := base.Rect(); ok {
		t.Error("Rect() of an unplaced tile should report false")
	}
}

func TestTileEqual(t *testing.T) {
	fp := grid.Footprint{Width: 1, Height: 1}
	tests := []struct {
		name string
		a, b Tile
		want bool
	}{
		{"both unplaced", New("a", fp), New("a", fp), true},
		{"same origin", New("a", fp).At(grid.Cell{Col: 1}), New("a", fp).At(grid.Cell{Col: 1}), true},
		{"different origin", New("a", fp).At(grid.Cell{Col: 1}), New("a", fp).At(grid.Cell{Col: 2}), false},
		{"placed vs unplaced", New("a", fp).At(grid.Cell{}), New("a", fp), false},
		{"different id", New("a", fp), New("b", fp), false},
		{"different footprint", New("a", fp), New("a", grid.Footprint{Width: 2, Height: 1}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindFootprint(t *testing.T) {
	tests := []struct {
		kind Kind
		want grid.Footprint
	}{
		{KindButton, grid.Footprint{Width: 2, Height: 1}},
		{KindSmallButton, grid.Footprint{Width: 1, Height: 1}},
		{KindFaderVertical, grid.Footprint{Width: 1, Height: 2}},
		{KindFaderHorizontal, grid.Footprint{Width: 2, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, ok := tt.kind.Footprint()
			if !ok || got != tt.want {
				t.Errorf("Footprint() = %v, %v; want %v", got, ok, tt.want)
			}
		})
	}

	if _, ok := Kind("knob").Footprint(); ok {
		t.Error("unknown kind should not have a footprint")
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Fader-Vertical ")
	if err != nil || k != KindFaderVertical {
		t.Errorf("ParseKind() = %q, %v", k, err)
	}
	if _, err := ParseKind("knob"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseKind(knob) error = %v, want INVALID_INPUT", err)
	}
}

func TestValidateAll(t *testing.T) {
	fp := grid.Footprint{Width: 1, Height: 1}
	tests := []struct {
		name    string
		tiles   []Tile
		wantErr bool
	}{
		{"empty", nil, false},
		{"valid", []Tile{New("a", fp), New("b", fp)}, false},
		{"duplicate", []Tile{New("a", fp), New("a", fp)}, true},
		{"empty id", []Tile{New("", fp)}, true},
		{"zero footprint", []Tile{New("a", grid.Footprint{})}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAll(tt.tiles)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAll() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidTile) {
				t.Errorf("ValidateAll() code = %v, want INVALID_TILE", errors.GetCode(err))
			}
		})
	}
}

func TestCheckInvariant(t *testing.T) {
	g := grid.Default()
	button := grid.Footprint{Width: 2, Height: 1}

	tests := []struct {
		name    string
		tiles   []Tile
		wantErr bool
	}{
		{"empty", nil, false},
		{"unplaced ignored", []Tile{New("a", button), New("b", button)}, false},
		{"adjacent", []Tile{New("a", button).At(grid.Cell{}), New("b", button).At(grid.Cell{Col: 2})}, false},
		{"overlap", []Tile{New("a", button).At(grid.Cell{}), New("b", button).At(grid.Cell{Col: 1})}, true},
		{"out of bounds", []Tile{New("a", button).At(grid.Cell{Col: 7, Row: 3})}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInvariant(g, tt.tiles)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckInvariant() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvariantViolated) {
				t.Errorf("CheckInvariant() code = %v", errors.GetCode(err))
			}
		})
	}
}

func TestCollectionHelpers(t *testing.T) {
	fp := grid.Footprint{Width: 1, Height: 1}
	tiles := []Tile{New("a", fp).At(grid.Cell{}), New("b", fp), New("c", fp)}

	if got := Find(tiles, "c"); got != 2 {
		t.Errorf("Find(c) = %d, want 2", got)
	}
	if got := Find(tiles, "z"); got != -1 {
		t.Errorf("Find(z) = %d, want -1", got)
	}
	if idx := Index(tiles); idx["b"] != 1 || len(idx) != 3 {
		t.Errorf("Index() = %v", idx)
	}
	if got := UnplacedIDs(tiles); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("UnplacedIDs() = %v", got)
	}

	clone := CloneAll(tiles)
	if !EqualAll(clone, tiles) {
		t.Error("CloneAll() should produce an equal collection")
	}
	clone[0].Origin.Row = 2
	if EqualAll(clone, tiles) {
		t.Error("CloneAll() should not share origins")
	}
}
