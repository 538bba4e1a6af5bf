package engine

import (
	"time"

	"github.com/matzehuels/tilegrid/pkg/drag"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/observability"
)

// BeginDrag starts a drag session for the tile with the given id.
func (e *Engine) BeginDrag(id string) error {
	if err := e.drag.Begin(e.tiles, e.revision, id); err != nil {
		return err
	}
	observability.Engine().OnDragStart(e.ctx, id)
	e.logger.Debug("drag started", "id", id, "revision", e.revision)
	return nil
}

// UpdateDrag feeds a pointer sample into the active session. p is the
// dragged tile's top-left corner in grid-local pixels.
func (e *Engine) UpdateDrag(p grid.Point) (drag.Preview, error) {
	start := time.Now()
	preview, err := e.drag.Update(p)
	if err != nil {
		return drag.Preview{}, err
	}
	observability.Engine().OnDragUpdate(e.ctx, preview.Tile, preview.CacheHit, time.Since(start))
	return preview, nil
}

// MoveDrag moves the dragged tile straight to cell.
func (e *Engine) MoveDrag(cell grid.Cell) (drag.Preview, error) {
	start := time.Now()
	preview, err := e.drag.MoveTo(cell)
	if err != nil {
		return drag.Preview{}, err
	}
	observability.Engine().OnDragUpdate(e.ctx, preview.Tile, preview.CacheHit, time.Since(start))
	return preview, nil
}

// DragPreview returns the latest preview of the active session.
func (e *Engine) DragPreview() (drag.Preview, bool) { return e.drag.Current() }

// Dragging reports whether a drag session is active.
func (e *Engine) Dragging() bool { return e.drag.Dragging() }

// EndDrag ends the active session. A valid, current preview is committed as
// one update; otherwise the outcome is rejected or stale and the collection
// is unchanged.
func (e *Engine) EndDrag() (drag.Outcome, error) {
	started, _ := e.drag.Started()
	out, err := e.drag.End(e.revision)
	if err != nil {
		return drag.Outcome{}, err
	}
	if out.Committed() {
		e.commit(out.Tiles)
		out.Tiles = e.Tiles()
	}
	observability.Engine().OnDragEnd(e.ctx, out.Tile, string(out.Status), time.Since(started))
	e.logger.Debug("drag ended",
		"id", out.Tile,
		"status", out.Status,
		"target", out.Target,
		"moved", out.Moved)
	return out, nil
}

// CancelDrag discards the active session. It reports whether one was active.
func (e *Engine) CancelDrag() bool {
	return e.endWithout(drag.StatusCancelled)
}

func (e *Engine) invalidateDrag() bool {
	return e.endWithout(drag.StatusStale)
}

func (e *Engine) endWithout(status drag.Status) bool {
	started, _ := e.drag.Started()
	preview, ok := e.drag.Current()
	if !ok {
		return false
	}
	if status == drag.StatusStale {
		e.drag.Invalidate()
	} else {
		e.drag.Cancel()
	}
	observability.Engine().OnDragEnd(e.ctx, preview.Tile, string(status), time.Since(started))
	e.logger.Debug("drag discarded", "id", preview.Tile, "status", status)
	return true
}
