package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tilegrid/internal/board"
	"github.com/matzehuels/tilegrid/pkg/drag"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/project"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// Lines the editor prints above the board, and the board border width.
const (
	editorHeaderLines = 3
	editorBorder      = 1
)

var editorHelpStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// EditorModel - Interactive drag editor
// =============================================================================

// EditorModel is the bubbletea model for `tilegrid edit`.
//
// A left mouse press on a tile starts a drag; motion feeds pointer samples
// (terminal cells scaled to the configured pixel metrics) and release ends
// it. The keyboard drives the same session: arrows move the cursor, enter
// picks up the tile under it, arrows then move the tile, enter drops and esc
// cancels.
type EditorModel struct {
	Board *board.Board
	Saved bool
	Dirty bool

	save    func(*project.Project) error
	labels  map[string]string
	cursor  grid.Cell
	grab    grid.Point
	preview *drag.Preview
	status  string
	failed  bool
}

// NewEditorModel creates an editor for b. save persists the project on "s".
func NewEditorModel(b *board.Board, save func(*project.Project) error) EditorModel {
	return EditorModel{
		Board:  b,
		save:   save,
		labels: b.Labels(),
		status: "click and drag a tile, or move the cursor and press enter",
	}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}
	return m, nil
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	eng := m.Board.Engine
	switch msg.String() {
	case "ctrl+c", "q":
		if eng.Dragging() {
			eng.CancelDrag()
		}
		return m, tea.Quit
	case "esc":
		if eng.CancelDrag() {
			m.preview = nil
			m.setStatus(false, "drag cancelled")
		}
	case "enter", " ":
		if eng.Dragging() {
			m.end()
		} else {
			m.beginAt(m.cursor, grid.Point{})
		}
	case "s":
		m.persist()
	case "up", "k":
		m.step(0, -1)
	case "down", "j":
		m.step(0, 1)
	case "left", "h":
		m.step(-1, 0)
	case "right", "l":
		m.step(1, 0)
	}
	return m, nil
}

func (m EditorModel) handleMouse(msg tea.MouseMsg) EditorModel {
	pointer, inside := m.pointer(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside || m.Board.Engine.Dragging() {
			return m
		}
		cell := m.cellAt(msg.X, msg.Y)
		m.cursor = cell
		m.beginAt(cell, pointer)
	case tea.MouseActionMotion:
		if m.preview == nil {
			return m
		}
		p, err := m.Board.Engine.UpdateDrag(pointer.Sub(m.grab))
		if err != nil {
			m.setStatus(true, errors.UserMessage(err))
			return m
		}
		m.track(p)
	case tea.MouseActionRelease:
		if m.preview != nil {
			m.end()
		}
	}
	return m
}

// pointer converts a terminal position to grid-local pixels.
func (m EditorModel) pointer(x, y int) (grid.Point, bool) {
	col := float64(x-editorBorder) / cellChars
	row := float64(y-editorHeaderLines-editorBorder) / cellLines
	g := m.Board.Engine.Grid()
	inside := col >= 0 && row >= 0 && col < float64(g.Columns) && row < float64(g.MaxRows)
	pitch := m.Board.Engine.Metrics().Pitch()
	return grid.Point{X: col * pitch, Y: row * pitch}, inside
}

// cellAt returns the grid cell under a terminal position.
func (m EditorModel) cellAt(x, y int) grid.Cell {
	return grid.Cell{
		Col: (x - editorBorder) / cellChars,
		Row: (y - editorHeaderLines - editorBorder) / cellLines,
	}
}

// beginAt picks up the tile covering cell. pointer is where the grab
// happened; the offset to the tile's corner is kept for later samples.
func (m *EditorModel) beginAt(cell grid.Cell, pointer grid.Point) {
	t, ok := tileAt(m.Board.Engine.Tiles(), cell)
	if !ok {
		m.setStatus(false, fmt.Sprintf("no tile at %s", cell))
		return
	}
	if err := m.Board.Engine.BeginDrag(t.ID); err != nil {
		m.setStatus(true, errors.UserMessage(err))
		return
	}
	p, _ := m.Board.Engine.DragPreview()
	m.grab = grid.Point{}
	if pointer != (grid.Point{}) {
		metrics := m.Board.Engine.Metrics()
		m.grab = pointer.Sub(grid.CellPosition(*t.Origin, metrics.CellSize, metrics.Spacing))
	}
	m.track(p)
}

// step moves the cursor, or the dragged tile during a drag.
func (m *EditorModel) step(dc, dr int) {
	if m.preview == nil {
		g := m.Board.Engine.Grid()
		next := m.cursor.Offset(dc, dr)
		if g.Contains(next) {
			m.cursor = next
		}
		return
	}
	p, err := m.Board.Engine.MoveDrag(m.preview.Target.Offset(dc, dr))
	if err != nil {
		m.setStatus(true, errors.UserMessage(err))
		return
	}
	m.track(p)
}

func (m *EditorModel) track(p drag.Preview) {
	m.preview = &p
	if p.Valid {
		m.setStatus(false, fmt.Sprintf("%s → %s, %d displaced", m.labels[p.Tile], p.Target, len(p.Origins)))
	} else {
		m.setStatus(true, fmt.Sprintf("%s → %s is blocked", m.labels[p.Tile], p.Target))
	}
}

func (m *EditorModel) end() {
	m.preview = nil
	out, err := m.Board.Engine.EndDrag()
	if err != nil {
		m.setStatus(true, errors.UserMessage(err))
		return
	}
	if !out.Committed() {
		m.setStatus(true, fmt.Sprintf("%s: %s", m.labels[out.Tile], out.Status))
		return
	}
	m.Board.Sync()
	m.cursor = out.Target
	if len(out.Moved) == 0 {
		m.setStatus(false, "dropped in place")
		return
	}
	m.Dirty = true
	m.Saved = false
	m.setStatus(false, fmt.Sprintf("moved %s", strings.Join(out.Moved, ", ")))
}

func (m *EditorModel) persist() {
	if m.Board.Engine.Dragging() {
		m.setStatus(true, "finish the drag before saving")
		return
	}
	if err := m.save(m.Board.Project); err != nil {
		m.setStatus(true, errors.UserMessage(err))
		return
	}
	m.Dirty = false
	m.Saved = true
	m.setStatus(false, "saved")
}

func (m *EditorModel) setStatus(failed bool, msg string) {
	m.failed = failed
	m.status = msg
}

// tiles returns the committed tiles with the current preview applied. The
// dragged tile is drawn at its snapped target: a terminal cell is coarser
// than the pointer position, so there is nothing finer to draw.
func (m EditorModel) tiles() []tile.Tile {
	tiles := m.Board.Engine.Tiles()
	if m.preview == nil {
		return tiles
	}
	for i, t := range tiles {
		if t.ID == m.preview.Tile {
			tiles[i] = t.At(m.preview.Target)
		} else if o, ok := m.preview.Origins[t.ID]; ok {
			tiles[i] = t.At(o)
		}
	}
	return tiles
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render(m.Board.Project.Name)
	if m.Dirty {
		title += StyleWarning.Render(" *")
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(editorHelpStyle.Render("drag: mouse or ⏎ + arrows  ⏎ drop  esc cancel  s save  q quit"))
	b.WriteString("\n\n")

	view := boardView{
		grid:   m.Board.Engine.Grid(),
		tiles:  m.tiles(),
		labels: m.labels,
	}
	if m.preview != nil {
		view.active = m.preview.Tile
		view.invalid = !m.preview.Valid
		view.displaced = make(map[string]bool, len(m.preview.Origins))
		for id := range m.preview.Origins {
			view.displaced[id] = true
		}
	} else {
		cursor := m.cursor
		view.cursor = &cursor
	}
	b.WriteString(view.render())
	b.WriteString("\n")

	status := StyleDim.Render(m.status)
	if m.failed {
		status = StyleError.Render(m.status)
	}
	b.WriteString(status)
	b.WriteString("\n")
	return b.String()
}

// tileAt returns the tile covering c.
func tileAt(tiles []tile.Tile, c grid.Cell) (tile.Tile, bool) {
	for _, t := range tiles {
		r, ok := t.Rect()
		if !ok {
			continue
		}
		if c.Col >= r.Left() && c.Col < r.Right() && c.Row >= r.Top() && c.Row < r.Bottom() {
			return t, true
		}
	}
	return tile.Tile{}, false
}
