// Package board binds a project document to a placement engine.
//
// A [Board] loads the project's tiles into an engine (repairing and packing
// them), runs engine operations and writes the results back into the
// document, so the CLI and the server share one load/mutate/sync path.
package board

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilegrid/pkg/drag"
	"github.com/matzehuels/tilegrid/pkg/engine"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/project"
)

// Options configures how a board's engine is built.
type Options struct {
	// Grid is used when the project does not set its own.
	Grid    grid.Grid
	Metrics drag.Metrics
	Logger  *log.Logger
	Context context.Context
}

// Board is a project with a live engine.
type Board struct {
	Project *project.Project
	Engine  *engine.Engine
}

// Open loads p into a new engine. The project is synced immediately, so
// after Open it reflects the repaired and packed layout.
func Open(p *project.Project, opts Options) (*Board, engine.LoadReport, error) {
	if err := p.Validate(); err != nil {
		return nil, engine.LoadReport{}, err
	}
	def := opts.Grid
	if def == (grid.Grid{}) {
		def = grid.Default()
	}

	engOpts := []engine.Option{engine.WithLogger(opts.Logger), engine.WithContext(opts.Context)}
	if opts.Metrics != (drag.Metrics{}) {
		engOpts = append(engOpts, engine.WithMetrics(opts.Metrics))
	}
	eng, err := engine.New(p.GridOr(def), engOpts...)
	if err != nil {
		return nil, engine.LoadReport{}, err
	}

	tiles, err := p.EngineTiles()
	if err != nil {
		return nil, engine.LoadReport{}, err
	}
	rep, err := eng.Load(tiles)
	if err != nil {
		return nil, engine.LoadReport{}, err
	}

	b := &Board{Project: p, Engine: eng}
	b.Sync()
	return b, rep, nil
}

// Sync writes the engine's collection back into the project.
func (b *Board) Sync() {
	b.Project.ApplyTiles(b.Engine.Tiles())
}

// Add places a new document tile and returns it as stored.
func (b *Board) Add(t project.Tile) (project.Tile, error) {
	if _, exists := b.Project.Tile(t.ID); exists {
		return project.Tile{}, errors.New(errors.ErrCodeInvalidTile, "duplicate tile id %q", t.ID)
	}
	if t.MIDI != nil {
		if err := t.MIDI.Validate(); err != nil {
			return project.Tile{}, err
		}
	}
	et, err := t.Engine()
	if err != nil {
		return project.Tile{}, err
	}
	if _, err := b.Engine.Add(et); err != nil {
		return project.Tile{}, err
	}
	b.Project.Tiles = append(b.Project.Tiles, t)
	b.Sync()
	added, _ := b.Project.Tile(t.ID)
	return *added, nil
}

// Remove deletes a tile.
func (b *Board) Remove(id string) error {
	if err := b.Engine.Remove(id); err != nil {
		return err
	}
	b.Sync()
	return nil
}

// Resize changes a tile's footprint.
func (b *Board) Resize(id string, fp grid.Footprint) (project.Tile, error) {
	if _, err := b.Engine.Resize(id, fp); err != nil {
		return project.Tile{}, err
	}
	b.Sync()
	t, _ := b.Project.Tile(id)
	return *t, nil
}

// Move runs a complete drag of the tile to cell and syncs a committed result.
func (b *Board) Move(id string, cell grid.Cell) (drag.Preview, drag.Outcome, error) {
	if err := b.Engine.BeginDrag(id); err != nil {
		return drag.Preview{}, drag.Outcome{}, err
	}
	preview, err := b.Engine.MoveDrag(cell)
	if err != nil {
		b.Engine.CancelDrag()
		return drag.Preview{}, drag.Outcome{}, err
	}
	out, err := b.Engine.EndDrag()
	if err != nil {
		return preview, drag.Outcome{}, err
	}
	if out.Committed() {
		b.Sync()
	}
	return preview, out, nil
}

// Labels maps tile ids to display labels: the title when set, else the id.
func (b *Board) Labels() map[string]string {
	return Labels(b.Project)
}

// Labels maps the tile ids of p to display labels.
func Labels(p *project.Project) map[string]string {
	labels := make(map[string]string, len(p.Tiles))
	for _, t := range p.Tiles {
		if t.Title != "" {
			labels[t.ID] = t.Title
		} else {
			labels[t.ID] = t.ID
		}
	}
	return labels
}
