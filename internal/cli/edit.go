package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/project"
)

// editCommand creates the "edit" command that runs the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Rearrange tiles interactively in the terminal",
		Long: `Open the board in a full-screen editor. Drag tiles with the mouse, or move
the cursor with the arrow keys (hjkl) and press enter to pick up and drop
a tile. Displaced tiles are previewed while dragging.

Keys: enter/space pick up or drop, esc cancel, s save, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.openBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			save := func(p *project.Project) error {
				_, err := saveProject(args[0], output, p)
				return err
			}

			prog := tea.NewProgram(NewEditorModel(b, save),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(cmd.Context()),
			)
			final, err := prog.Run()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "run editor")
			}

			m, _ := final.(EditorModel)
			switch {
			case m.Dirty:
				printWarning("Quit with unsaved changes")
				printNextStep("Run again and press s to save", appName+" edit "+args[0])
			case m.Saved:
				out := output
				if out == "" {
					out = args[0]
				}
				printSuccess("Saved %s", StyleHighlight.Render(b.Project.Name))
				printFile(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}
