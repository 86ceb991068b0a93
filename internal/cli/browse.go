package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/cluster"
)

func (c *CLI) browseCommand() *cobra.Command {
	var padding float64

	cmd := &cobra.Command{
		Use:   "browse <payload.json|snapshot>",
		Short: "Explore the hierarchy interactively",
		Long: `Browse opens a collapsible tree of clusters next to a point map of one
level. Hovering or selecting a cluster in either pane highlights it in both;
the tree scrolls to follow the hovered cluster. Press r to reload the payload.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshots,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			_, label, err := c.loadPayload(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if padding <= 0 {
				padding = c.Config.Layout.PaddingFactor
			}
			load := func(ctx context.Context) (cluster.Analytics, error) {
				p, _, err := c.loadPayload(ctx, ref)
				return p, err
			}
			return runBrowse(cmd.Context(), NewBrowseModel(cmd.Context(), label, padding, load))
		},
	}
	cmd.Flags().Float64Var(&padding, "padding", 0, "footprint padding factor (default from config)")
	return cmd
}
