// Package project defines the on-disk document for a controller layout.
//
// A [Project] names a board, optionally fixes its grid, and lists its tiles
// with everything the placement engine does not care about: titles, control
// kinds and MIDI assignments. [Project.EngineTiles] and [Project.ApplyTiles]
// convert between the document and the engine's plain tiles so the engine
// never sees anything but ids, footprints and origins.
//
// Documents are read and written as JSON, TOML or YAML; see [Unmarshal] and
// [Marshal]. JSON input is checked against an embedded JSON Schema before it
// is decoded.
package project

import (
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// MIDI message types a tile can send.
const (
	MIDINote    = "note"
	MIDIControl = "cc"
	MIDIProgram = "program"
)

// MIDI is the message a tile sends when triggered.
type MIDI struct {
	Type    string `json:"type" toml:"type" yaml:"type" bson:"type"`
	Channel int    `json:"channel" toml:"channel" yaml:"channel" bson:"channel"`
	Number  int    `json:"number" toml:"number" yaml:"number" bson:"number"`
}

// Validate checks the message type, channel (1-16) and number (0-127).
func (m MIDI) Validate() error {
	switch m.Type {
	case MIDINote, MIDIControl, MIDIProgram:
	default:
		return errors.New(errors.ErrCodeInvalidProject, "unknown midi type %q", m.Type)
	}
	if m.Channel < 1 || m.Channel > 16 {
		return errors.New(errors.ErrCodeInvalidProject, "midi channel %d out of range 1-16", m.Channel)
	}
	if m.Number < 0 || m.Number > 127 {
		return errors.New(errors.ErrCodeInvalidProject, "midi number %d out of range 0-127", m.Number)
	}
	return nil
}

// Tile is a tile as stored in a project document.
//
// The footprint comes from Kind unless Width and Height override it. Col and
// Row are either both set (an explicit origin) or both absent (needs
// placement).
type Tile struct {
	ID     string    `json:"id" toml:"id" yaml:"id" bson:"id"`
	Title  string    `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty" bson:"title,omitempty"`
	Kind   tile.Kind `json:"kind,omitempty" toml:"kind,omitempty" yaml:"kind,omitempty" bson:"kind,omitempty"`
	Width  int       `json:"width,omitempty" toml:"width,omitempty" yaml:"width,omitempty" bson:"width,omitempty"`
	Height int       `json:"height,omitempty" toml:"height,omitempty" yaml:"height,omitempty" bson:"height,omitempty"`
	Col    *int      `json:"col,omitempty" toml:"col,omitempty" yaml:"col,omitempty" bson:"col,omitempty"`
	Row    *int      `json:"row,omitempty" toml:"row,omitempty" yaml:"row,omitempty" bson:"row,omitempty"`
	MIDI   *MIDI     `json:"midi,omitempty" toml:"midi,omitempty" yaml:"midi,omitempty" bson:"midi,omitempty"`
}

// Footprint resolves the tile's size from its kind and explicit dimensions.
func (t Tile) Footprint() (grid.Footprint, error) {
	var fp grid.Footprint
	if t.Kind != "" {
		kfp, ok := t.Kind.Footprint()
		if !ok {
			return grid.Footprint{}, errors.New(errors.ErrCodeInvalidProject, "tile %s: unknown kind %q", t.ID, t.Kind)
		}
		fp = kfp
	}
	if t.Width < 0 || t.Height < 0 {
		return grid.Footprint{}, errors.New(errors.ErrCodeInvalidProject, "tile %s: negative size %dx%d", t.ID, t.Width, t.Height)
	}
	if t.Width > 0 {
		fp.Width = t.Width
	}
	if t.Height > 0 {
		fp.Height = t.Height
	}
	if !fp.Valid() {
		return grid.Footprint{}, errors.New(errors.ErrCodeInvalidProject, "tile %s: needs a kind or a width and height", t.ID)
	}
	return fp, nil
}

// Origin returns the tile's explicit origin, or nil when it has none.
func (t Tile) Origin() (*grid.Cell, error) {
	switch {
	case t.Col == nil && t.Row == nil:
		return nil, nil
	case t.Col == nil || t.Row == nil:
		return nil, errors.New(errors.ErrCodeInvalidProject, "tile %s: col and row must be set together", t.ID)
	}
	return &grid.Cell{Col: *t.Col, Row: *t.Row}, nil
}

// SetOrigin stores c as the tile's origin; nil clears it.
func (t *Tile) SetOrigin(c *grid.Cell) {
	if c == nil {
		t.Col, t.Row = nil, nil
		return
	}
	col, row := c.Col, c.Row
	t.Col, t.Row = &col, &row
}

// SetFootprint stores fp, leaving Width and Height empty when the kind
// already implies fp.
func (t *Tile) SetFootprint(fp grid.Footprint) {
	if kfp, ok := t.Kind.Footprint(); ok && kfp == fp {
		t.Width, t.Height = 0, 0
		return
	}
	t.Width, t.Height = fp.Width, fp.Height
}

// Engine converts t to an engine tile.
func (t Tile) Engine() (tile.Tile, error) {
	fp, err := t.Footprint()
	if err != nil {
		return tile.Tile{}, err
	}
	origin, err := t.Origin()
	if err != nil {
		return tile.Tile{}, err
	}
	return tile.Tile{ID: t.ID, Footprint: fp, Origin: origin}, nil
}

// Project is a named board layout.
type Project struct {
	Name string `json:"name" toml:"name" yaml:"name" bson:"name"`
	// Grid is the board's grid. A zero Grid means "use the configured
	// default".
	Grid  grid.Grid `json:"grid,omitzero" toml:"grid,omitempty" yaml:"grid,omitempty" bson:"grid,omitempty"`
	Tiles []Tile    `json:"tiles" toml:"tiles" yaml:"tiles" bson:"tiles"`
}

// New returns an empty project.
func New(name string, g grid.Grid) *Project {
	return &Project{Name: name, Grid: g, Tiles: []Tile{}}
}

// GridOr returns the project's grid, or def when the project leaves it unset.
func (p *Project) GridOr(def grid.Grid) grid.Grid {
	if p.Grid == (grid.Grid{}) {
		return def
	}
	return p.Grid
}

// Tile returns the tile with the given id.
func (p *Project) Tile(id string) (*Tile, bool) {
	for i := range p.Tiles {
		if p.Tiles[i].ID == id {
			return &p.Tiles[i], true
		}
	}
	return nil, false
}

// Validate checks the name, grid and every tile of p.
func (p *Project) Validate() error {
	if err := errors.ValidateProjectName(p.Name); err != nil {
		return err
	}
	if p.Grid != (grid.Grid{}) {
		if err := p.Grid.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProject, err, "project %s", p.Name)
		}
	}
	seen := make(map[string]bool, len(p.Tiles))
	for _, t := range p.Tiles {
		if err := errors.ValidateTileID(t.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProject, err, "project %s", p.Name)
		}
		if seen[t.ID] {
			return errors.New(errors.ErrCodeInvalidProject, "project %s: duplicate tile id %q", p.Name, t.ID)
		}
		seen[t.ID] = true
		if _, err := t.Engine(); err != nil {
			return err
		}
		if t.MIDI != nil {
			if err := t.MIDI.Validate(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidProject, err, "tile %s", t.ID)
			}
		}
	}
	return nil
}

// EngineTiles converts every tile to an engine tile, in document order.
func (p *Project) EngineTiles() ([]tile.Tile, error) {
	out := make([]tile.Tile, 0, len(p.Tiles))
	for _, t := range p.Tiles {
		et, err := t.Engine()
		if err != nil {
			return nil, err
		}
		out = append(out, et)
	}
	return out, nil
}

// ApplyTiles writes engine state back into p.
//
// The document's tile list is rebuilt in the order of tiles. Existing tiles
// keep their title, kind and MIDI assignment and take the engine's footprint
// and origin. Tiles unknown to the document are appended with only an id,
// size and origin; document tiles missing from tiles are dropped.
func (p *Project) ApplyTiles(tiles []tile.Tile) {
	byID := make(map[string]Tile, len(p.Tiles))
	for _, t := range p.Tiles {
		byID[t.ID] = t
	}
	out := make([]Tile, 0, len(tiles))
	for _, et := range tiles {
		t, ok := byID[et.ID]
		if !ok {
			t = Tile{ID: et.ID}
		}
		t.SetFootprint(et.Footprint)
		t.SetOrigin(et.Origin)
		out = append(out, t)
	}
	p.Tiles = out
}
