package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilegrid/pkg/drag"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/observability"
	"github.com/matzehuels/tilegrid/pkg/pack"
	"github.com/matzehuels/tilegrid/pkg/repair"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// Engine holds the committed tile collection of one board.
type Engine struct {
	grid     grid.Grid
	metrics  drag.Metrics
	tiles    []tile.Tile
	revision uint64
	drag     *drag.Controller
	logger   *log.Logger
	ctx      context.Context
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the pixel metrics used to quantize drag samples.
func WithMetrics(m drag.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithContext sets the context passed to observability hooks.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) {
		if ctx != nil {
			e.ctx = ctx
		}
	}
}

// New returns an empty engine for g.
func New(g grid.Grid, opts ...Option) (*Engine, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		grid:    g,
		metrics: drag.DefaultMetrics(),
		logger:  log.Default(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.metrics.Validate(); err != nil {
		return nil, err
	}
	e.drag = drag.NewController(g, e.metrics)
	return e, nil
}

// Grid returns the engine's grid.
func (e *Engine) Grid() grid.Grid { return e.grid }

// Metrics returns the engine's pixel metrics.
func (e *Engine) Metrics() drag.Metrics { return e.metrics }

// Revision returns the number of committed changes so far.
func (e *Engine) Revision() uint64 { return e.revision }

// Tiles returns a copy of the committed collection.
func (e *Engine) Tiles() []tile.Tile { return tile.CloneAll(e.tiles) }

// Tile returns a copy of the tile with the given id.
func (e *Engine) Tile(id string) (tile.Tile, bool) {
	i := tile.Find(e.tiles, id)
	if i < 0 {
		return tile.Tile{}, false
	}
	return e.tiles[i].Clone(), true
}

// Check verifies that every placed tile lies inside the grid and that no two
// placed tiles overlap.
func (e *Engine) Check() error {
	return tile.CheckInvariant(e.grid, e.tiles)
}

// commit replaces the collection and bumps the revision.
func (e *Engine) commit(tiles []tile.Tile) {
	e.tiles = tiles
	e.revision++
}

// =============================================================================
// Collection Operations
// =============================================================================

// LoadReport describes what Load changed while bringing a collection into the
// grid.
type LoadReport struct {
	Repair   repair.Report
	Placed   []string
	Unplaced []string
}

// Load replaces the collection with tiles.
//
// The tiles are validated (non-empty unique ids, positive footprints), then
// repaired into the grid and auto-packed. Tiles that still have no room are
// kept without an origin and listed in the report. Any active drag session is
// discarded.
func (e *Engine) Load(tiles []tile.Tile) (LoadReport, error) {
	if err := tile.ValidateAll(tiles); err != nil {
		return LoadReport{}, err
	}
	e.invalidateDrag()

	start := time.Now()
	repaired, rep := repair.Repair(e.grid, tiles)
	observability.Engine().OnRepair(e.ctx, len(rep.Moved), len(rep.Cleared), time.Since(start))

	start = time.Now()
	res := pack.Place(e.grid, repaired)
	observability.Engine().OnPlace(e.ctx, len(res.Placed), len(res.Unplaced), time.Since(start))

	e.commit(res.Tiles)
	e.logger.Debug("loaded tiles",
		"tiles", len(res.Tiles),
		"moved", len(rep.Moved),
		"cleared", len(rep.Cleared),
		"placed", len(res.Placed),
		"unplaced", len(res.Unplaced))

	return LoadReport{Repair: rep, Placed: res.Placed, Unplaced: res.Unplaced}, nil
}

// Place auto-packs every tile without an origin. The result lists the tiles
// that received an origin and those left without one for lack of room.
func (e *Engine) Place() pack.Result {
	start := time.Now()
	res := pack.Place(e.grid, e.tiles)
	observability.Engine().OnPlace(e.ctx, len(res.Placed), len(res.Unplaced), time.Since(start))

	if len(res.Placed) > 0 {
		e.commit(res.Tiles)
		e.logger.Debug("placed tiles", "placed", res.Placed, "unplaced", res.Unplaced)
	}
	return pack.Result{Tiles: tile.CloneAll(res.Tiles), Placed: res.Placed, Unplaced: res.Unplaced}
}

// RepairBounds runs the bounds-repair pass over the collection.
func (e *Engine) RepairBounds() repair.Report {
	start := time.Now()
	tiles, rep := repair.Repair(e.grid, e.tiles)
	observability.Engine().OnRepair(e.ctx, len(rep.Moved), len(rep.Cleared), time.Since(start))

	if rep.Changed() {
		e.commit(tiles)
		e.logger.Debug("repaired tiles", "moved", rep.Moved, "cleared", rep.Cleared)
	}
	return rep
}

// CanFit reports whether a tile of footprint fp could be added without moving
// anything.
func (e *Engine) CanFit(fp grid.Footprint) bool {
	return pack.CanFit(e.grid, e.tiles, fp)
}

// Add inserts t into the collection and returns it as placed.
//
// An explicit origin is kept when the tile fits there without overlapping
// anything; otherwise the tile is placed by first-fit. When no cell fits, Add
// returns CAPACITY_EXCEEDED and the collection is unchanged.
func (e *Engine) Add(t tile.Tile) (tile.Tile, error) {
	if err := t.Validate(); err != nil {
		return tile.Tile{}, err
	}
	if tile.Find(e.tiles, t.ID) >= 0 {
		return tile.Tile{}, errors.New(errors.ErrCodeInvalidTile, "duplicate tile id %q", t.ID)
	}
	occ, err := tile.Occupy(e.grid, e.tiles)
	if err != nil {
		return tile.Tile{}, err
	}

	t = t.Clone()
	if r, ok := t.Rect(); !ok || !occ.Free(r) {
		c, ok := pack.FirstFit(occ, t.Footprint)
		if !ok {
			return tile.Tile{}, errors.New(errors.ErrCodeCapacityExceeded, "no room for a %s tile on the %s grid", t.Footprint, e.grid)
		}
		t = t.At(c)
	}

	next := append(tile.CloneAll(e.tiles), t)
	e.commit(next)
	e.logger.Debug("added tile", "id", t.ID, "rect", grid.RectAt(*t.Origin, t.Footprint))
	return t.Clone(), nil
}

// Remove deletes the tile with the given id. Its cells are free immediately;
// no other tile moves.
func (e *Engine) Remove(id string) error {
	i := tile.Find(e.tiles, id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "tile %q not found", id)
	}
	next := make([]tile.Tile, 0, len(e.tiles)-1)
	next = append(next, tile.CloneAll(e.tiles[:i])...)
	next = append(next, tile.CloneAll(e.tiles[i+1:])...)
	e.commit(next)
	e.logger.Debug("removed tile", "id", id)
	return nil
}

// Resize changes the footprint of a tile.
//
// The tile keeps its origin when the new footprint still fits there without
// overlapping another tile. Otherwise it moves to the first free cell. When
// no cell fits, Resize returns CAPACITY_EXCEEDED and nothing changes.
func (e *Engine) Resize(id string, fp grid.Footprint) (tile.Tile, error) {
	i := tile.Find(e.tiles, id)
	if i < 0 {
		return tile.Tile{}, errors.New(errors.ErrCodeNotFound, "tile %q not found", id)
	}
	if !fp.Valid() {
		return tile.Tile{}, errors.New(errors.ErrCodeInvalidTile, "tile %s: non-positive footprint %s", id, fp)
	}

	occ, err := tile.Occupy(e.grid, e.tiles)
	if err != nil {
		return tile.Tile{}, err
	}
	occ.Release(id)

	t := e.tiles[i].Clone()
	t.Footprint = fp
	if r, ok := t.Rect(); !ok || !occ.Free(r) {
		c, ok := pack.FirstFit(occ, fp)
		if !ok {
			return tile.Tile{}, errors.New(errors.ErrCodeCapacityExceeded, "no room for tile %s at %s", id, fp)
		}
		t = t.At(c)
	}

	next := tile.CloneAll(e.tiles)
	next[i] = t
	e.commit(next)
	e.logger.Debug("resized tile", "id", id, "rect", grid.RectAt(*t.Origin, fp))
	return t.Clone(), nil
}
