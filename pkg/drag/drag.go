// Package drag implements the drag session state machine.
//
// A [Controller] is either idle or dragging exactly one tile. While dragging,
// every pointer sample is quantized to a target cell, clamped so the tile's
// footprint stays inside the grid, and handed to a per-session
// [displace.Resolver]. The resulting [Preview] describes where the dragged
// tile and every displaced tile would go; nothing is written to the committed
// collection until [Controller.End].
//
// # Lifecycle
//
//	Idle --Begin--> Dragging --Update/MoveTo--> Dragging
//	Dragging --End--> Idle      (committed, rejected or stale)
//	Dragging --Cancel/Invalidate--> Idle  (discarded)
//
// A session remembers the revision of the collection it was started against.
// Ending it with a different revision discards the preview as stale, so a
// preview computed against an older collection is never committed.
package drag

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tilegrid/pkg/displace"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// Metrics describes the on-screen size of the grid used to quantize pointer
// positions.
type Metrics struct {
	CellSize float64 `json:"cell_size" toml:"cell_size" yaml:"cell_size"`
	Spacing  float64 `json:"spacing" toml:"spacing" yaml:"spacing"`
}

// DefaultMetrics returns the metrics used when none are configured.
func DefaultMetrics() Metrics {
	return Metrics{CellSize: 64, Spacing: 8}
}

// Pitch returns the distance between the top-left corners of two adjacent cells.
func (m Metrics) Pitch() float64 { return m.CellSize + m.Spacing }

// Validate rejects non-positive cell sizes and negative spacing.
func (m Metrics) Validate() error {
	if m.CellSize <= 0 || m.Spacing < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid metrics: cell size %.1f, spacing %.1f", m.CellSize, m.Spacing)
	}
	return nil
}

// Status is the way a drag session ended.
type Status string

// Session end states.
const (
	StatusCommitted Status = "committed"
	StatusRejected  Status = "rejected"
	StatusStale     Status = "stale"
	StatusCancelled Status = "cancelled"
)

// Preview is the speculative state of a drag session after the latest sample.
type Preview struct {
	Session string
	Tile    string
	// Position is the raw pointer position the sample was taken at, in
	// grid-local pixels. Hosts draw the dragged tile here.
	Position grid.Point
	// Target is the quantized, clamped origin the dragged tile would take.
	Target grid.Cell
	// Origins holds speculative origins for displaced tiles only.
	Origins map[string]grid.Cell
	Blocked []string
	Valid   bool
	// CacheHit is true when the resolution came from the session cache.
	CacheHit bool
}

// Outcome is the result of ending a drag session.
type Outcome struct {
	Session string
	Tile    string
	Status  Status
	Target  grid.Cell
	// Tiles is the committed collection. It is nil unless Status is
	// StatusCommitted.
	Tiles []tile.Tile
	// Moved lists tiles whose origin changed, in collection order.
	Moved []string
}

// Committed reports whether the outcome carries a new collection.
func (o Outcome) Committed() bool { return o.Status == StatusCommitted }

// Err converts a rejected or stale outcome into a coded error. It returns nil
// for committed and cancelled sessions.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusRejected:
		return errors.New(errors.ErrCodeInvalidDisplacement, "cannot move %s to %s: displaced tiles have no room", o.Tile, o.Target)
	case StatusStale:
		return errors.New(errors.ErrCodeStaleSession, "drag of %s is stale: the board changed", o.Tile)
	}
	return nil
}

// session is the ephemeral state of one drag.
type session struct {
	id        string
	tileID    string
	footprint grid.Footprint
	revision  uint64
	started   time.Time
	resolver  *displace.Resolver
	preview   Preview
}

// Controller owns at most one drag session. It is not safe for concurrent use.
type Controller struct {
	grid    grid.Grid
	metrics Metrics
	session *session
}

// NewController returns an idle controller for g.
func NewController(g grid.Grid, m Metrics) *Controller {
	return &Controller{grid: g, metrics: m}
}

// Grid returns the controller's grid.
func (c *Controller) Grid() grid.Grid { return c.grid }

// Metrics returns the controller's pixel metrics.
func (c *Controller) Metrics() Metrics { return c.metrics }

// Dragging reports whether a session is active.
func (c *Controller) Dragging() bool { return c.session != nil }

// Current returns the latest preview of the active session.
func (c *Controller) Current() (Preview, bool) {
	if c.session == nil {
		return Preview{}, false
	}
	return clonePreview(c.session.preview), true
}

// Started returns when the active session began.
func (c *Controller) Started() (time.Time, bool) {
	if c.session == nil {
		return time.Time{}, false
	}
	return c.session.started, true
}

// Begin starts dragging id over a snapshot of tiles taken at revision.
//
// The initial target is the tile's committed origin, or the clamped top-left
// cell for a tile without one. It fails with NOT_FOUND for an unknown id and
// DRAG_IN_PROGRESS when a session is already active.
func (c *Controller) Begin(tiles []tile.Tile, revision uint64, id string) error {
	if c.session != nil {
		return errors.New(errors.ErrCodeDragInProgress, "tile %s is already being dragged", c.session.tileID)
	}
	i := tile.Find(tiles, id)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "tile %q not found", id)
	}
	t := tiles[i].Clone()

	s := &session{
		id:        uuid.NewString(),
		tileID:    id,
		footprint: t.Footprint,
		revision:  revision,
		started:   time.Now(),
		resolver:  displace.NewResolver(c.grid, tiles),
	}
	start := c.grid.Clamp(grid.Cell{}, t.Footprint)
	if t.Origin != nil {
		start = *t.Origin
	}
	p, err := c.resolve(s, start, grid.CellPosition(start, c.metrics.CellSize, c.metrics.Spacing))
	if err != nil {
		return err
	}
	s.preview = p
	c.session = s
	return nil
}

// Update moves the dragged tile to pointer position p, the tile's top-left
// corner in grid-local pixels. The target is quantize(p) clamped into the
// grid.
func (c *Controller) Update(p grid.Point) (Preview, error) {
	if c.session == nil {
		return Preview{}, errors.New(errors.ErrCodeNoDragSession, "no drag in progress")
	}
	raw := grid.Quantize(p, c.metrics.CellSize, c.metrics.Spacing)
	return c.move(c.grid.Clamp(raw, c.session.footprint), p)
}

// MoveTo moves the dragged tile straight to cell, clamped into the grid. It is
// the keyboard and remote-control counterpart of Update.
func (c *Controller) MoveTo(cell grid.Cell) (Preview, error) {
	if c.session == nil {
		return Preview{}, errors.New(errors.ErrCodeNoDragSession, "no drag in progress")
	}
	target := c.grid.Clamp(cell, c.session.footprint)
	return c.move(target, grid.CellPosition(target, c.metrics.CellSize, c.metrics.Spacing))
}

func (c *Controller) move(target grid.Cell, pos grid.Point) (Preview, error) {
	p, err := c.resolve(c.session, target, pos)
	if err != nil {
		return Preview{}, err
	}
	c.session.preview = p
	return clonePreview(p), nil
}

func (c *Controller) resolve(s *session, target grid.Cell, pos grid.Point) (Preview, error) {
	hit := s.resolver.Cached(s.tileID, target)
	res, err := s.resolver.Resolve(s.tileID, target)
	if err != nil {
		return Preview{}, err
	}
	return Preview{
		Session:  s.id,
		Tile:     s.tileID,
		Position: pos,
		Target:   res.Target,
		Origins:  res.Origins,
		Blocked:  res.Blocked,
		Valid:    res.Valid,
		CacheHit: hit,
	}, nil
}

// End finishes the active session and returns to idle.
//
// The latest preview is committed only when it is valid and revision still
// matches the revision the session began with. Otherwise the outcome is
// rejected or stale and carries no tiles. Committing applies every origin to
// a copy of the snapshot; the copy is checked against the grid invariant and
// rejected as a whole if it fails.
func (c *Controller) End(revision uint64) (Outcome, error) {
	s := c.session
	if s == nil {
		return Outcome{}, errors.New(errors.ErrCodeNoDragSession, "no drag in progress")
	}
	c.session = nil

	out := Outcome{
		Session: s.id,
		Tile:    s.tileID,
		Target:  s.preview.Target,
	}
	switch {
	case revision != s.revision:
		out.Status = StatusStale
		return out, nil
	case !s.preview.Valid:
		out.Status = StatusRejected
		return out, nil
	}

	before := s.resolver.Tiles()
	next := tile.CloneAll(before)
	for i := range next {
		if next[i].ID == s.tileID {
			next[i] = next[i].At(s.preview.Target)
			continue
		}
		if o, ok := s.preview.Origins[next[i].ID]; ok {
			next[i] = next[i].At(o)
		}
	}
	if err := tile.CheckInvariant(c.grid, next); err != nil {
		out.Status = StatusRejected
		return out, nil
	}

	for i := range next {
		if !next[i].Equal(before[i]) {
			out.Moved = append(out.Moved, next[i].ID)
		}
	}
	out.Status = StatusCommitted
	out.Tiles = next
	return out, nil
}

// Cancel discards the active session without touching any tile. It reports
// whether a session was active.
func (c *Controller) Cancel() bool {
	active := c.session != nil
	c.session = nil
	return active
}

// Invalidate discards the active session because the collection it was
// computed against has been replaced. It behaves exactly like Cancel.
func (c *Controller) Invalidate() bool {
	return c.Cancel()
}

// Stats returns the resolver cache counters of the active session.
func (c *Controller) Stats() (displace.Stats, bool) {
	if c.session == nil {
		return displace.Stats{}, false
	}
	return c.session.resolver.Stats(), true
}

func clonePreview(p Preview) Preview {
	if p.Origins != nil {
		origins := make(map[string]grid.Cell, len(p.Origins))
		for id, c := range p.Origins {
			origins[id] = c
		}
		p.Origins = origins
	}
	p.Blocked = append([]string(nil), p.Blocked...)
	return p
}
