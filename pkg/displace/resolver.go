package displace

import (
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// Stats reports cache usage of a Resolver.
type Stats struct {
	Hits    int
	Misses  int
	Entries int
}

type cacheKey struct {
	dragged string
	target  grid.Cell
}

// Resolver resolves displacements against a fixed snapshot of a committed
// collection and caches the results by (dragged id, target).
//
// A Resolver belongs to one drag session and is dropped when the session
// ends. The number of entries is bounded by the grid's cell count per dragged
// tile. It is not safe for concurrent use.
type Resolver struct {
	grid  grid.Grid
	tiles []tile.Tile
	cache map[cacheKey]Resolution
	stats Stats
}

// NewResolver snapshots tiles. Later changes to the caller's slice do not
// affect the resolver.
func NewResolver(g grid.Grid, tiles []tile.Tile) *Resolver {
	return &Resolver{
		grid:  g,
		tiles: tile.CloneAll(tiles),
		cache: make(map[cacheKey]Resolution),
	}
}

// Grid returns the grid the resolver works on.
func (r *Resolver) Grid() grid.Grid { return r.grid }

// Tiles returns a copy of the snapshot the resolver works on.
func (r *Resolver) Tiles() []tile.Tile { return tile.CloneAll(r.tiles) }

// Cached reports whether a resolution for (draggedID, target) is cached.
func (r *Resolver) Cached(draggedID string, target grid.Cell) bool {
	_, ok := r.cache[cacheKey{draggedID, target}]
	return ok
}

// Resolve returns the resolution for dropping draggedID at target, computing
// it only on the first request for that key. The returned value is a copy.
// Errors are not cached.
func (r *Resolver) Resolve(draggedID string, target grid.Cell) (Resolution, error) {
	key := cacheKey{draggedID, target}
	if res, ok := r.cache[key]; ok {
		r.stats.Hits++
		return res.Clone(), nil
	}
	res, err := Resolve(r.grid, r.tiles, draggedID, target)
	if err != nil {
		return Resolution{}, err
	}
	r.stats.Misses++
	r.cache[key] = res
	return res.Clone(), nil
}

// Stats returns the current cache counters.
func (r *Resolver) Stats() Stats {
	s := r.stats
	s.Entries = len(r.cache)
	return s
}

// Reset drops every cached resolution and zeroes the counters.
func (r *Resolver) Reset() {
	clear(r.cache)
	r.stats = Stats{}
}
