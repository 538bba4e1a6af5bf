package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/internal/server"
)

// serveCommand creates the "serve" command that hosts boards over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve boards from the configured store over HTTP and WebSocket",
		Long: `Serve boards from the configured store. Boards are edited with REST calls
and dragged over a WebSocket at /boards/{name}/drag. The server shuts down
gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			srv := server.New(st, server.Options{
				Grid:    cfg.Grid,
				Metrics: cfg.Metrics,
				Logger:  c.Logger,
			})
			printInfo("Serving %s boards on %s", StyleHighlight.Render(cfg.Store.Backend), StyleValue.Render(addr))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
