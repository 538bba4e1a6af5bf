package displace

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

var (
	button = grid.Footprint{Width: 2, Height: 1}
	small  = grid.Footprint{Width: 1, Height: 1}
)

func at(id string, fp grid.Footprint, col, row int) tile.Tile {
	return tile.New(id, fp).At(grid.Cell{Col: col, Row: row})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		grid        grid.Grid
		tiles       []tile.Tile
		dragged     string
		target      grid.Cell
		wantOrigins map[string]grid.Cell
		wantBlocked []string
		wantValid   bool
	}{
		{
			name: "new button pushes both neighbours aside",
			grid: grid.Default(),
			tiles: []tile.Tile{
				at("a", button, 0, 0),
				at("b", small, 2, 0),
				tile.New("n", button),
			},
			dragged:     "n",
			target:      grid.Cell{Col: 1, Row: 0},
			wantOrigins: map[string]grid.Cell{"a": {Col: 0, Row: 1}, "b": {Col: 3, Row: 0}},
			wantValid:   true,
		},
		{
			name:        "free target displaces nothing",
			grid:        grid.Default(),
			tiles:       []tile.Tile{at("a", button, 0, 0), at("b", small, 2, 0)},
			dragged:     "a",
			target:      grid.Cell{Col: 4, Row: 2},
			wantOrigins: map[string]grid.Cell{},
			wantValid:   true,
		},
		{
			name:        "dropping on home displaces nothing",
			grid:        grid.Default(),
			tiles:       []tile.Tile{at("a", button, 3, 1)},
			dragged:     "a",
			target:      grid.Cell{Col: 3, Row: 1},
			wantOrigins: map[string]grid.Cell{},
			wantValid:   true,
		},
		{
			name:        "swap into the dragged tile's home",
			grid:        grid.Default(),
			tiles:       []tile.Tile{at("a", small, 0, 0), at("b", small, 1, 0)},
			dragged:     "a",
			target:      grid.Cell{Col: 1, Row: 0},
			wantOrigins: map[string]grid.Cell{"b": {Col: 0, Row: 0}},
			wantValid:   true,
		},
		{
			name:        "shift right",
			grid:        grid.Default(),
			tiles:       []tile.Tile{at("x", small, 0, 0), tile.New("n", small)},
			dragged:     "n",
			target:      grid.Cell{Col: 0, Row: 0},
			wantOrigins: map[string]grid.Cell{"x": {Col: 1, Row: 0}},
			wantValid:   true,
		},
		{
			name:        "shift down when right is taken",
			grid:        grid.Default(),
			tiles:       []tile.Tile{at("x", small, 0, 0), at("y", small, 1, 0), tile.New("n", small)},
			dragged:     "n",
			target:      grid.Cell{Col: 0, Row: 0},
			wantOrigins: map[string]grid.Cell{"x": {Col: 0, Row: 1}},
			wantValid:   true,
		},
		{
			name:        "general scan as last resort",
			grid:        grid.Grid{Columns: 2, MaxRows: 2},
			tiles:       []tile.Tile{at("x", small, 0, 1), at("y", small, 1, 1), tile.New("n", small)},
			dragged:     "n",
			target:      grid.Cell{Col: 0, Row: 1},
			wantOrigins: map[string]grid.Cell{"x": {Col: 0, Row: 0}},
			wantValid:   true,
		},
		{
			name:        "resolved tiles reserve their new cells",
			grid:        grid.Grid{Columns: 2, MaxRows: 2},
			tiles:       []tile.Tile{at("x", small, 0, 0), at("y", small, 1, 0), tile.New("n", button)},
			dragged:     "n",
			target:      grid.Cell{Col: 0, Row: 0},
			wantOrigins: map[string]grid.Cell{"x": {Col: 0, Row: 1}, "y": {Col: 1, Row: 1}},
			wantValid:   true,
		},
		{
			name:        "no room leaves tiles blocked at home",
			grid:        grid.Grid{Columns: 2, MaxRows: 1},
			tiles:       []tile.Tile{at("x", small, 0, 0), at("y", small, 1, 0), tile.New("n", button)},
			dragged:     "n",
			target:      grid.Cell{Col: 0, Row: 0},
			wantOrigins: map[string]grid.Cell{"x": {Col: 0, Row: 0}, "y": {Col: 1, Row: 0}},
			wantBlocked: []string{"x", "y"},
			wantValid:   false,
		},
		{
			name:        "target outside the grid",
			grid:        grid.Default(),
			tiles:       []tile.Tile{at("a", button, 0, 0)},
			dragged:     "a",
			target:      grid.Cell{Col: 7, Row: 0},
			wantOrigins: map[string]grid.Cell{},
			wantValid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.grid, tt.tiles, tt.dragged, tt.target)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantOrigins, res.Origins); diff != "" {
				t.Errorf("Origins mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantBlocked, res.Blocked); diff != "" {
				t.Errorf("Blocked mismatch (-want +got):\n%s", diff)
			}
			if res.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", res.Valid, tt.wantValid)
			}
			if res.Dragged != tt.dragged || res.Target != tt.target {
				t.Errorf("Resolve() = %s@%s, want %s@%s", res.Dragged, res.Target, tt.dragged, tt.target)
			}
		})
	}
}

func TestResolveDisplacedOrder(t *testing.T) {
	tiles := []tile.Tile{
		at("b", small, 2, 0),
		at("a", button, 0, 0),
		tile.New("n", button),
	}
	res, err := Resolve(grid.Default(), tiles, "n", grid.Cell{Col: 1, Row: 0})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if diff := cmp.Diff([]string{"b", "a"}, res.Displaced); diff != "" {
		t.Errorf("Displaced should follow collection order (-want +got):\n%s", diff)
	}
}

func TestResolveUnknownTile(t *testing.T) {
	_, err := Resolve(grid.Default(), nil, "ghost", grid.Cell{})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Resolve() error = %v, want NOT_FOUND", err)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	tiles := []tile.Tile{at("a", button, 0, 0), at("b", small, 2, 0), tile.New("n", button)}
	before := tile.CloneAll(tiles)

	if _, err := Resolve(grid.Default(), tiles, "n", grid.Cell{Col: 1, Row: 0}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !tile.EqualAll(tiles, before) {
		t.Errorf("Resolve() mutated its input: %v", tiles)
	}
}

func TestResolutionMoves(t *testing.T) {
	tiles := []tile.Tile{at("x", small, 0, 0), at("y", small, 1, 0)}
	res := Resolution{Origins: map[string]grid.Cell{
		"x": {Col: 0, Row: 0},
		"y": {Col: 1, Row: 1},
	}}

	got := res.Moves(tiles)
	want := map[string]grid.Cell{"y": {Col: 1, Row: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Moves() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverCache(t *testing.T) {
	tiles := []tile.Tile{at("a", button, 0, 0), at("b", small, 2, 0), tile.New("n", button)}
	r := NewResolver(grid.Default(), tiles)
	target := grid.Cell{Col: 1, Row: 0}

	if r.Cached("n", target) {
		t.Fatal("Cached() should be false before the first Resolve")
	}
	first, err := r.Resolve("n", target)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !r.Cached("n", target) {
		t.Error("Cached() should be true after Resolve")
	}

	first.Origins["a"] = grid.Cell{Col: 7, Row: 3}
	first.Blocked = append(first.Blocked, "z")

	second, err := r.Resolve("n", target)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := second.Origins["a"]; got != (grid.Cell{Col: 0, Row: 1}) {
		t.Errorf("cached resolution was mutated through a returned copy: a = %v", got)
	}
	if len(second.Blocked) != 0 {
		t.Errorf("cached Blocked was mutated: %v", second.Blocked)
	}

	if _, err := r.Resolve("n", grid.Cell{Col: 4, Row: 0}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := r.Resolve("ghost", target); err == nil {
		t.Error("Resolve(ghost) should fail")
	}

	want := Stats{Hits: 1, Misses: 2, Entries: 2}
	if got := r.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	r.Reset()
	if got := r.Stats(); got != (Stats{}) {
		t.Errorf("Stats() after Reset = %+v", got)
	}
}

func TestResolverSnapshot(t *testing.T) {
	tiles := []tile.Tile{at("x", small, 0, 0), tile.New("n", small)}
	r := NewResolver(grid.Default(), tiles)

	tiles[0].Origin.Col = 5

	res, err := r.Resolve("n", grid.Cell{Col: 0, Row: 0})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := res.Origins["x"]; !ok {
		t.Error("resolver should work on its own snapshot, not the caller's slice")
	}
}
