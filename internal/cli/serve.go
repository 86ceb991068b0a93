package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored snapshots over HTTP",
		Long: `Serve exposes the snapshot store as a JSON API:

  GET    /healthz
  GET    /api/snapshots
  POST   /api/snapshots?name=NAME            (payload body)
  GET    /api/snapshots/{id}
  DELETE /api/snapshots/{id}
  GET    /api/snapshots/{id}/levels
  GET    /api/snapshots/{id}/levels/{depth}
  GET    /api/snapshots/{id}/levels/{depth}/footprints?padding=P
  GET    /api/snapshots/{id}/clusters/{cid}/children
  GET    /api/snapshots/{id}/render/{format}?level=L&padding=P&detailed=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			cc, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			runner := c.newRunner(nil, cc)
			defer runner.Close()

			srv := server.New(server.Config{Addr: addr, Store: st, Runner: runner, Logger: c.Logger})
			printInfo("Serving snapshots on %s", StyleHighlight.Render(srv.Addr()))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
