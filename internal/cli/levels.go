package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/hierarchy"
	"github.com/matzehuels/clustermap/pkg/view"
)

func (c *CLI) levelsCommand() *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:               "levels <payload.json|snapshot>",
		Short:             "Summarize each level of the cluster hierarchy",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshots,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLevels(cmd.Context(), args[0], showIDs)
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "list excluded and mismatched cluster ids")
	return cmd
}

func (c *CLI) runLevels(ctx context.Context, ref string, showIDs bool) error {
	payload, label, err := c.loadPayload(ctx, ref)
	if err != nil {
		return err
	}
	res := c.newRunner(nil, nil).Layout(ctx, payload, pipelineOptionsFor(c))
	lm := res.Levels

	fmt.Fprintln(stdout, StyleTitle.Render(label))
	fmt.Fprintln(stdout, renderLevelTable(lm, res.Summaries))

	if n := len(res.Excluded); n > 0 {
		printWarning("%d clusters are not reachable from a root and were left out", n)
		if showIDs {
			printDetail("%s", strings.Join(res.Excluded, ", "))
		}
	}
	if mm := lm.LevelMismatches(); len(mm) > 0 {
		printInfo("%d clusters declare a level that differs from their depth", len(mm))
		if showIDs {
			printDetail("%s", strings.Join(mm, ", "))
		}
	}
	return nil
}

func renderLevelTable(lm *hierarchy.LevelMap, sums []hierarchy.LevelSummary) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)

	rows := make([][]string, len(sums))
	for i, s := range sums {
		largest := "—"
		if c, ok := lm.Cluster(s.Largest); ok {
			share, _ := hierarchy.ShareOf(lm, c.ID)
			largest = fmt.Sprintf("%s (%.1f%%)", truncate(c.DisplayName(), 32), share)
		}
		rows[i] = []string{
			strconv.Itoa(s.Depth),
			strconv.Itoa(s.Clusters),
			strconv.Itoa(s.TotalCount),
			strconv.Itoa(s.Parents),
			largest,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("Level", "Clusters", "Conversations", "Parents", "Largest").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return levelStyle(row).Bold(true)
			}
			if col == 4 {
				return lipgloss.NewStyle().Foreground(colorText)
			}
			return lipgloss.NewStyle().Foreground(colorLabel)
		}).
		Render()
}

func (c *CLI) treeCommand() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:               "tree <payload.json|snapshot>",
		Short:             "Print the cluster hierarchy as a tree",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshots,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, _, err := c.loadPayload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			lm := c.newRunner(nil, nil).Layout(cmd.Context(), payload, pipelineOptionsFor(c)).Levels
			fmt.Fprint(stdout, renderTree(lm, depth))
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "maximum depth to print (0 for all)")
	return cmd
}

// renderTree prints every row of a fully expanded tree down to maxDepth.
func renderTree(lm *hierarchy.LevelMap, maxDepth int) string {
	tree := view.NewTree(lm)
	tree.ExpandAll()

	var b strings.Builder
	for _, r := range tree.Rows() {
		if maxDepth > 0 && r.Depth >= maxDepth {
			continue
		}
		marker := "•"
		if r.HasChildren {
			marker = "▾"
			if maxDepth > 0 && r.Depth == maxDepth-1 {
				marker = "▸"
			}
		}
		fmt.Fprintf(&b, "%s%s %s %s\n",
			strings.Repeat("  ", r.Depth),
			levelStyle(r.Depth).Render(marker),
			StyleValue.Render(r.Cluster.DisplayName()),
			StyleDim.Render(fmt.Sprintf("%.1f%% · %d", r.Share, r.Cluster.Count)))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
