// Package cli implements the tilegrid command-line interface.
//
// Commands operate on project files (.json, .toml, .yaml) or on the
// configured project store. Every mutating command loads the project into a
// placement engine, which repairs out-of-bounds tiles and packs unplaced ones,
// runs the operation and writes the normalized project back.
//
// # Commands
//
//   - new, show: create and inspect projects
//   - pack, repair, fit: placement passes and capacity checks
//   - add, remove, resize, move: edit tiles
//   - edit: interactive drag editor in the terminal
//   - serve: HTTP and WebSocket host
//   - store: copy projects to and from the configured store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through the
// CLI's charmbracelet logger.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/internal/board"
	"github.com/matzehuels/tilegrid/internal/config"
	"github.com/matzehuels/tilegrid/pkg/buildinfo"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/project"
	"github.com/matzehuels/tilegrid/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tilegrid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tilegrid lays out controller tiles on a fixed grid",
		Long:         `Tilegrid packs, repairs and rearranges fixed-size tiles on a columns x rows grid, with drag-and-drop displacement previews, from the terminal or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tilegrid/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.packCommand())
	root.AddCommand(c.repairCommand())
	root.AddCommand(c.fitCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Store
// =============================================================================

// loadConfig reads the config file once per CLI.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.config != nil {
		return *c.config, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "grid", cfg.Grid, "store", cfg.Store.Backend)
	c.config = &cfg
	return cfg, nil
}

// openStore connects to the configured store, showing a spinner for the
// network backends.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend == store.BackendRedis || cfg.Store.Backend == store.BackendMongo {
		spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Connecting to %s...", cfg.Store.Backend))
		spinner.Start()
		defer spinner.Stop()
	}
	return store.Open(ctx, cfg.Store)
}

// =============================================================================
// Project Helpers
// =============================================================================

// openBoard reads a project file and loads it into an engine.
func (c *CLI) openBoard(ctx context.Context, path string) (*board.Board, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	p, err := project.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, rep, err := board.Open(p, board.Options{
		Grid:    cfg.Grid,
		Metrics: cfg.Metrics,
		Logger:  c.Logger,
		Context: ctx,
	})
	if err != nil {
		return nil, err
	}
	if rep.Repair.Changed() {
		c.Logger.Debug("repaired on load", "moved", rep.Repair.Moved, "cleared", rep.Repair.Cleared)
	}
	if len(rep.Unplaced) > 0 {
		c.Logger.Warn("no room for tiles", "tiles", rep.Unplaced)
	}
	return b, nil
}

// saveProject writes p to out, or back to path when out is empty.
func saveProject(path, out string, p *project.Project) (string, error) {
	if out == "" {
		out = path
	}
	if err := project.WriteFile(out, p); err != nil {
		return "", err
	}
	return out, nil
}

// parseCellArgs parses "<col> <row>" positional arguments.
func parseCellArgs(colArg, rowArg string) (grid.Cell, error) {
	col, err := strconv.Atoi(colArg)
	if err != nil {
		return grid.Cell{}, errors.New(errors.ErrCodeInvalidInput, "invalid column %q", colArg)
	}
	row, err := strconv.Atoi(rowArg)
	if err != nil {
		return grid.Cell{}, errors.New(errors.ErrCodeInvalidInput, "invalid row %q", rowArg)
	}
	return grid.Cell{Col: col, Row: row}, nil
}

// projectName derives a default project name from a file path.
func projectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileExists reports whether path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
