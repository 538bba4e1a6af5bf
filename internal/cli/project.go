package cli

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/internal/board"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/project"
	"github.com/matzehuels/tilegrid/pkg/repair"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// =============================================================================
// new
// =============================================================================

// newCommand creates the "new" command that writes an empty project.
func (c *CLI) newCommand() *cobra.Command {
	var (
		name    string
		columns int
		rows    int
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "new [file]",
		Short: "Create an empty project file",
		Long: `Create an empty project file. The format follows the extension
(.json, .toml, .yaml). Without --columns/--rows the project uses the
grid from the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if fileExists(path) && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			if name == "" {
				name = projectName(path)
			}

			var g grid.Grid
			if columns != 0 || rows != 0 {
				var err error
				if g, err = grid.New(columns, rows); err != nil {
					return err
				}
			}
			p := project.New(name, g)
			if err := p.Validate(); err != nil {
				return err
			}
			if err := project.WriteFile(path, p); err != nil {
				return err
			}

			printSuccess("Created project %s", StyleHighlight.Render(name))
			printFile(path)
			printNextStep("Add a tile", fmt.Sprintf("%s add %s --kind button", appName, path))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (default: file name)")
	cmd.Flags().IntVar(&columns, "columns", 0, "grid columns")
	cmd.Flags().IntVar(&rows, "rows", 0, "grid rows")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// =============================================================================
// show
// =============================================================================

// showCommand creates the "show" command that draws a project.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Draw the board and list its tiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			p, err := project.ReadFile(args[0])
			if err != nil {
				return err
			}
			tiles, err := p.EngineTiles()
			if err != nil {
				return err
			}
			g := p.GridOr(cfg.Grid)

			fmt.Println(StyleTitle.Render(p.Name) + " " + StyleDim.Render(g.String()))
			fmt.Println(boardView{grid: g, tiles: tiles, labels: board.Labels(p)}.render())
			if len(p.Tiles) > 0 {
				fmt.Println(tileTable(p))
			}
			if err := tile.CheckInvariant(g, tiles); err != nil {
				printWarning("%s", errors.UserMessage(err))
				printNextStep("Fix the layout", fmt.Sprintf("%s repair %s", appName, args[0]))
			}
			if unplaced := tile.UnplacedIDs(tiles); len(unplaced) > 0 {
				printWarning("%d tile(s) without a position", len(unplaced))
				printNextStep("Place them", fmt.Sprintf("%s pack %s", appName, args[0]))
			}
			return nil
		},
	}
}

// =============================================================================
// pack
// =============================================================================

// packCommand creates the "pack" command that repairs and auto-places tiles.
func (c *CLI) packCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pack [file]",
		Short: "Repair the layout and place every unplaced tile",
		Long: `Repair out-of-bounds or overlapping tiles, then place every tile without
a position at the first free cell in row-major order. Tiles that do not
fit stay unplaced and are reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			p, err := project.ReadFile(args[0])
			if err != nil {
				return err
			}
			b, rep, err := board.Open(p, board.Options{Grid: cfg.Grid, Metrics: cfg.Metrics, Logger: c.Logger, Context: cmd.Context()})
			if err != nil {
				return err
			}
			prog.done("packed tiles", "placed", len(rep.Placed), "unplaced", len(rep.Unplaced))

			out, err := saveProject(args[0], output, b.Project)
			if err != nil {
				return err
			}

			printSuccess("Placed %s tile(s)", StyleNumber.Render(fmt.Sprint(len(rep.Placed))))
			printIDs("placed", rep.Placed)
			printIDs("moved", rep.Repair.Moved)
			if len(rep.Unplaced) > 0 {
				printWarning("No room for %d tile(s)", len(rep.Unplaced))
				printIDs("unplaced", rep.Unplaced)
			}
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}

// =============================================================================
// repair
// =============================================================================

// repairCommand creates the "repair" command that runs bounds-repair only.
func (c *CLI) repairCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "repair [file]",
		Short: "Move out-of-bounds or overlapping tiles back into the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			p, err := project.ReadFile(args[0])
			if err != nil {
				return err
			}
			tiles, err := p.EngineTiles()
			if err != nil {
				return err
			}
			g := p.GridOr(cfg.Grid)

			before := tile.CloneAll(tiles)
			repaired, rep := repair.Repair(g, tiles)
			c.Logger.Debug("repaired", "kept", len(rep.Kept), "moved", rep.Moved, "cleared", rep.Cleared)

			if !rep.Changed() {
				printSuccess("Layout fits the %s grid, nothing to repair", g)
				return nil
			}
			p.ApplyTiles(repaired)
			out, err := saveProject(args[0], output, p)
			if err != nil {
				return err
			}

			printSuccess("Repaired %d tile(s)", len(rep.Moved)+len(rep.Cleared))
			idx := tile.Index(before)
			for _, t := range repaired {
				if !slices.Contains(rep.Moved, t.ID) {
					continue
				}
				printMove(t.ID, originString(before[idx[t.ID]]), originString(t))
			}
			if len(rep.Cleared) > 0 {
				printWarning("No room for %d tile(s), cleared their position", len(rep.Cleared))
				printIDs("cleared", rep.Cleared)
			}
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}

// =============================================================================
// fit
// =============================================================================

// fitCommand creates the "fit" command that checks free capacity.
func (c *CLI) fitCommand() *cobra.Command {
	var size, kind string

	cmd := &cobra.Command{
		Use:   "fit [file]",
		Short: "Check whether a tile of a given size still fits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := footprintFlags(size, kind)
			if err != nil {
				return err
			}
			b, err := c.openBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !b.Engine.CanFit(fp) {
				return errors.New(errors.ErrCodeCapacityExceeded, "no room for a %s tile on the %s grid", fp, b.Engine.Grid())
			}
			printSuccess("A %s tile fits", StyleHighlight.Render(fp.String()))
			return nil
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "tile size as WxH")
	cmd.Flags().StringVar(&kind, "kind", "", "tile kind (button, small_button, fader_vertical, fader_horizontal)")
	return cmd
}

// footprintFlags resolves --size and --kind. --size wins when both are set.
func footprintFlags(size, kind string) (grid.Footprint, error) {
	if size != "" {
		return grid.ParseFootprint(size)
	}
	if kind != "" {
		k, err := tile.ParseKind(kind)
		if err != nil {
			return grid.Footprint{}, err
		}
		fp, _ := k.Footprint()
		return fp, nil
	}
	return grid.Footprint{}, errors.New(errors.ErrCodeInvalidInput, "one of --size or --kind is required")
}

// =============================================================================
// add
// =============================================================================

// addCommand creates the "add" command that places a new tile.
func (c *CLI) addCommand() *cobra.Command {
	var (
		kind, size, title, at string
		id                    string
	)

	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Add a tile at the first free cell or at --at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := project.Tile{ID: id, Title: title}
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			if kind != "" {
				k, err := tile.ParseKind(kind)
				if err != nil {
					return err
				}
				t.Kind = k
			}
			if size != "" {
				fp, err := grid.ParseFootprint(size)
				if err != nil {
					return err
				}
				t.SetFootprint(fp)
			}
			if t.Kind == "" && size == "" {
				return errors.New(errors.ErrCodeInvalidInput, "one of --kind or --size is required")
			}
			var want *grid.Cell
			if at != "" {
				cell, err := grid.ParseCell(at)
				if err != nil {
					return err
				}
				want = &cell
				t.SetOrigin(want)
			}

			b, err := c.openBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			added, err := b.Add(t)
			if err != nil {
				return err
			}
			if _, err := saveProject(args[0], "", b.Project); err != nil {
				return err
			}

			origin, _ := added.Origin()
			fp, _ := added.Footprint()
			printSuccess("Added %s", StyleHighlight.Render(added.ID))
			printKeyValue("size", fp.String())
			printKeyValue("origin", origin.String())
			if want != nil && *origin != *want {
				printDetail("%s was taken, placed at the first free cell", want)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "tile kind (button, small_button, fader_vertical, fader_horizontal)")
	cmd.Flags().StringVar(&size, "size", "", "tile size as WxH (overrides the kind's size)")
	cmd.Flags().StringVar(&title, "title", "", "tile title")
	cmd.Flags().StringVar(&at, "at", "", "preferred origin as col,row")
	cmd.Flags().StringVar(&id, "id", "", "tile id (default: random uuid)")
	return cmd
}

// =============================================================================
// remove
// =============================================================================

// removeCommand creates the "remove" command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [file] [id]",
		Aliases: []string{"rm"},
		Short:   "Remove a tile",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.openBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := b.Remove(args[1]); err != nil {
				return err
			}
			if _, err := saveProject(args[0], "", b.Project); err != nil {
				return err
			}
			printSuccess("Removed %s", StyleHighlight.Render(args[1]))
			return nil
		},
	}
}

// =============================================================================
// resize
// =============================================================================

// resizeCommand creates the "resize" command.
func (c *CLI) resizeCommand() *cobra.Command {
	var size string

	cmd := &cobra.Command{
		Use:   "resize [file] [id]",
		Short: "Change a tile's size, moving it if it no longer fits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := grid.ParseFootprint(size)
			if err != nil {
				return err
			}
			b, err := c.openBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t, err := b.Resize(args[1], fp)
			if err != nil {
				return err
			}
			if _, err := saveProject(args[0], "", b.Project); err != nil {
				return err
			}
			origin, _ := t.Origin()
			printSuccess("Resized %s to %s", StyleHighlight.Render(t.ID), fp)
			printKeyValue("origin", origin.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "new size as WxH")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

// =============================================================================
// move
// =============================================================================

// moveCommand creates the "move" command, a scripted drag.
func (c *CLI) moveCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "move [file] [id] [col] [row]",
		Short: "Drag a tile to a cell, displacing the tiles in its way",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cell, err := parseCellArgs(args[2], args[3])
			if err != nil {
				return err
			}
			b, err := c.openBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			before := b.Engine.Tiles()

			if dryRun {
				if err := b.Engine.BeginDrag(args[1]); err != nil {
					return err
				}
				defer b.Engine.CancelDrag()
				preview, err := b.Engine.MoveDrag(cell)
				if err != nil {
					return err
				}
				printPreview(before, preview.Tile, preview.Target, preview.Origins, preview.Blocked, preview.Valid)
				return nil
			}

			preview, out, err := b.Move(args[1], cell)
			if err != nil {
				return err
			}
			if !out.Committed() {
				printPreview(before, preview.Tile, preview.Target, preview.Origins, preview.Blocked, preview.Valid)
				return out.Err()
			}
			if _, err := saveProject(args[0], "", b.Project); err != nil {
				return err
			}

			printSuccess("Moved %s to %s", StyleHighlight.Render(out.Tile), out.Target)
			idx := tile.Index(before)
			after := tile.Index(out.Tiles)
			for _, id := range out.Moved {
				if id == out.Tile {
					continue
				}
				printMove(id, originString(before[idx[id]]), originString(out.Tiles[after[id]]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the displacement without saving")
	return cmd
}

// printPreview prints a drag preview.
func printPreview(before []tile.Tile, id string, target grid.Cell, origins map[string]grid.Cell, blocked []string, valid bool) {
	if valid {
		printInfo("%s → %s", id, target)
	} else {
		printError("%s → %s is not possible", id, target)
	}
	for _, t := range before {
		if c, ok := origins[t.ID]; ok && t.ID != id {
			printMove(t.ID, originString(t), c.String())
		}
	}
	printIDs("blocked", blocked)
}

func originString(t tile.Tile) string {
	if t.Origin == nil {
		return "unplaced"
	}
	return t.Origin.String()
}
