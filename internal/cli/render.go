package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/project"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// Terminal size of one grid cell on the rendered board.
const (
	cellChars = 6
	cellLines = 2
)

// =============================================================================
// Board
// =============================================================================

// boardView draws tiles on a grid with lipgloss.
type boardView struct {
	grid   grid.Grid
	tiles  []tile.Tile
	labels map[string]string

	// Drag decorations.
	active    string
	displaced map[string]bool
	invalid   bool
	cursor    *grid.Cell
}

// owners maps every cell to the index of the tile covering it, or -1.
// Later tiles win where tiles overlap, so the dragged tile is drawn last.
func (v boardView) owners() []int {
	owner := make([]int, v.grid.Cells())
	for i := range owner {
		owner[i] = -1
	}
	draw := func(i int) {
		r, ok := v.tiles[i].Rect()
		if !ok {
			return
		}
		for _, c := range r.Cells() {
			if v.grid.Contains(c) {
				owner[c.Row*v.grid.Columns+c.Col] = i
			}
		}
	}
	active := -1
	for i, t := range v.tiles {
		if t.ID == v.active {
			active = i
			continue
		}
		draw(i)
	}
	if active >= 0 {
		draw(active)
	}
	return owner
}

func (v boardView) render() string {
	owner := v.owners()
	var lines []string
	for r := 0; r < v.grid.MaxRows; r++ {
		for l := 0; l < cellLines; l++ {
			var b strings.Builder
			for c := 0; c < v.grid.Columns; c++ {
				b.WriteString(v.cell(owner[r*v.grid.Columns+c], grid.Cell{Col: c, Row: r}, l))
			}
			lines = append(lines, b.String())
		}
	}

	border := colorDim
	if v.invalid {
		border = colorRed
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(strings.Join(lines, "\n"))
}

func (v boardView) cell(i int, c grid.Cell, line int) string {
	style := lipgloss.NewStyle().Width(cellChars)
	text := ""

	if i < 0 {
		style = style.Foreground(colorDim)
		if line == 0 {
			text = "  ·"
		}
	} else {
		t := v.tiles[i]
		style = style.Foreground(colorWhite).Background(tileColors[i%len(tileColors)])
		switch {
		case t.ID == v.active:
			style = style.Background(colorCyan).Bold(true)
		case v.displaced[t.ID]:
			style = style.Foreground(lipgloss.Color("0")).Background(colorYellow)
		}
		if line == 0 && c.Row == t.Origin.Row {
			text = labelSlice(v.labels[t.ID], c.Col-t.Origin.Col, t.Footprint.Width)
		}
	}

	if v.cursor != nil && *v.cursor == c && line == cellLines-1 {
		text = "  ▪"
	}
	return style.Render(text)
}

// labelSlice returns the part of label shown in the dc-th cell of a tile
// that is width cells wide.
func labelSlice(label string, dc, width int) string {
	runes := []rune(" " + label)
	if limit := width*cellChars - 1; len(runes) > limit {
		runes = append(runes[:limit-1], '…')
	}
	lo, hi := dc*cellChars, (dc+1)*cellChars
	if lo >= len(runes) {
		return ""
	}
	if hi > len(runes) {
		hi = len(runes)
	}
	return string(runes[lo:hi])
}

// =============================================================================
// Tile Table
// =============================================================================

// tileTable lists the tiles of p with their metadata.
func tileTable(p *project.Project) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(p.Tiles))
	for _, t := range p.Tiles {
		size := "?"
		if fp, err := t.Footprint(); err == nil {
			size = fp.String()
		}
		origin := "unplaced"
		if c, err := t.Origin(); err == nil && c != nil {
			origin = c.String()
		}
		midi := "—"
		if t.MIDI != nil {
			midi = fmt.Sprintf("%s ch%d #%d", t.MIDI.Type, t.MIDI.Channel, t.MIDI.Number)
		}
		kind := string(t.Kind)
		if kind == "" {
			kind = "—"
		}
		rows = append(rows, []string{t.ID, t.Title, kind, size, origin, midi})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Kind", "Size", "Origin", "MIDI").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row >= 0 && row < len(rows) && rows[row][4] == "unplaced" {
				return base.Foreground(colorYellow)
			}
			if col == 3 || col == 4 {
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		}).
		Render()
}
