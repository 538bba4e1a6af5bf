package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/project"
	"github.com/matzehuels/tilegrid/pkg/store"
)

// storeCommand creates the "store" command group.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Copy projects to and from the configured store",
		Long: `Manage projects in the store configured under [store] in the config file
(memory, file, redis or mongo). The server reads boards from the same store.`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storePushCommand())
	cmd.AddCommand(c.storePullCommand())
	cmd.AddCommand(c.storeRemoveCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(st store.Store) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// notFound converts store.ErrNotFound into a coded error.
func notFound(err error, name string) error {
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.New(errors.ErrCodeNotFound, "project %q not found in store", name)
	}
	return err
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				names, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(names) == 0 {
					printInfo("No stored projects")
					return nil
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			})
		},
	}
}

func (c *CLI) storePushCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "push [file]",
		Short: "Upload a project file to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name != "" {
				p.Name = name
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Put(cmd.Context(), p); err != nil {
					return err
				}
				printSuccess("Pushed %s", StyleHighlight.Render(p.Name))
				printNextStep("Serve it", appName+" serve")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "store under this name (default: project name)")
	return cmd
}

func (c *CLI) storePullCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pull [name] [file]",
		Short: "Download a stored project to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			if fileExists(path) && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				p, err := st.Get(cmd.Context(), name)
				if err != nil {
					return notFound(err, name)
				}
				if err := project.WriteFile(path, p); err != nil {
					return err
				}
				printSuccess("Pulled %s", StyleHighlight.Render(name))
				printFile(path)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) storeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [name]",
		Aliases: []string{"remove"},
		Short:   "Delete a stored project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return notFound(err, args[0])
				}
				printSuccess("Removed %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}
