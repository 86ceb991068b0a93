package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
	"github.com/matzehuels/clustermap/pkg/snapshot"
)

func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Manage stored analysis payloads",
		Long: `Snapshots are named, validated payloads kept in the configured store
(JSON files by default, MongoDB when store.backend = "mongo"). Commands that
take a payload also accept a snapshot id, an id prefix of at least four
characters, or a snapshot name.`,
	}

	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())
	return cmd
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st snapshot.Store) error {
				list, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No snapshots")
					return nil
				}
				fmt.Fprintln(stdout, renderSnapshotTable(list))
				return nil
			})
		},
	}
}

func (c *CLI) snapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <snapshot>",
		Short:             "Show a snapshot and its levels",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshots,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st snapshot.Store) error {
				snap, err := resolveSnapshot(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				lm := hierarchy.Build(snap.Payload.Clusters)

				printKeyValue("Name", snap.Name)
				printKeyValue("ID", snap.ID)
				printKeyValue("Created", snap.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				printKeyValue("Clusters", strconv.Itoa(snap.Clusters))
				printKeyValue("Levels", strconv.Itoa(lm.Depth()))
				if n := lm.ExcludedCount(); n > 0 {
					printKeyValue("Excluded", strconv.Itoa(n))
				}
				printSeries(snap.Payload)
				fmt.Fprintln(stdout, renderLevelTable(lm, hierarchy.Summarize(lm)))
				return nil
			})
		},
	}
}

func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "save <payload.json>",
		Short: "Store a payload file as a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := cluster.ReadFile(args[0])
			if err != nil {
				return err
			}
			snap, err := c.saveSnapshot(cmd.Context(), name, payload)
			if err != nil {
				return err
			}
			printSuccess("Saved snapshot %s", StyleHighlight.Render(snap.Name))
			printDetail("id %s", snap.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "snapshot name (default: creation time)")
	return cmd
}

func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <snapshot>...",
		Aliases:           []string{"rm"},
		Short:             "Delete snapshots",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeSnapshots,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st snapshot.Store) error {
				for _, ref := range args {
					snap, err := resolveSnapshot(cmd.Context(), st, ref)
					if err != nil {
						return err
					}
					if err := st.Delete(cmd.Context(), snap.ID); err != nil {
						return err
					}
					printSuccess("Deleted %s", snap.Name)
				}
				return nil
			})
		},
	}
}

func (c *CLI) withStore(ctx context.Context, fn func(snapshot.Store) error) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func resolveSnapshot(ctx context.Context, st snapshot.Store, ref string) (*snapshot.Snapshot, error) {
	snap, err := snapshot.Resolve(ctx, st, ref)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", ref, err)
	}
	return snap, nil
}

func renderSnapshotTable(list []snapshot.Summary) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{s.ID[:8], s.Name, strconv.Itoa(s.Clusters), s.CreatedAt.Local().Format("2006-01-02 15:04")}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("ID", "Name", "Clusters", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 1:
				return StyleValue
			default:
				return lipgloss.NewStyle().Foreground(colorLabel)
			}
		}).
		Render()
}
