package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/conversation"
	"github.com/matzehuels/clustermap/pkg/pipeline"
	"github.com/matzehuels/clustermap/pkg/snapshot"
)

type analyseOpts struct {
	server        string
	maxClusters   int
	noCheckpoints bool
	refresh       bool
	noCache       bool
	save          string
	output        string
	format        string
}

func (c *CLI) analyseCommand() *cobra.Command {
	var opts analyseOpts

	cmd := &cobra.Command{
		Use:     "analyse <conversations.json>...",
		Aliases: []string{"analyze"},
		Short:   "Cluster conversations with the analysis service",
		Long: `Analyse sends conversations to the analysis service and writes the
resulting payload. Inputs may be normalized conversation files or raw chat
exports. Identical requests are answered from the response cache unless
--refresh is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyse(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "analysis service URL (default from config)")
	cmd.Flags().IntVar(&opts.maxClusters, "max-clusters", 0, "upper bound on root clusters (default from config)")
	cmd.Flags().BoolVar(&opts.noCheckpoints, "no-checkpoints", false, "ask the service not to reuse checkpoints")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached responses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().StringVar(&opts.save, "save", "", "store the payload as a snapshot with this name")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "payload.json", "payload output file (empty to skip)")
	cmd.Flags().StringVar(&opts.format, "format", "auto", "input format: auto, claude, kura")
	return cmd
}

func (c *CLI) runAnalyse(ctx context.Context, paths []string, opts analyseOpts) error {
	f, err := conversation.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	convs, err := conversation.LoadFiles(ctx, paths, f)
	if err != nil {
		return err
	}

	cc, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	client, err := c.newClient(opts.server, cc)
	if err != nil {
		cc.Close()
		return err
	}
	runner := c.newRunner(client, cc)
	defer runner.Close()

	popts := pipeline.Options{
		MaxClusters:        opts.maxClusters,
		DisableCheckpoints: opts.noCheckpoints || c.Config.Analysis.DisableCheckpoints,
		Refresh:            opts.refresh,
		PaddingFactor:      c.Config.Layout.PaddingFactor,
		Logger:             c.Logger,
	}
	if popts.MaxClusters == 0 {
		popts.MaxClusters = c.Config.Analysis.MaxClusters
	}

	spin := newSpinner(ctx, fmt.Sprintf("Analysing %d conversations at %s", len(convs), client.BaseURL()))
	spin.Start()
	res, err := runner.Analyse(ctx, convs, popts)
	if err != nil {
		spin.Fail("Analysis failed")
		return err
	}
	took := spin.Stop()
	c.Logger.Debug("analysis finished", "took", took.Round(time.Millisecond), "cached", res.CacheInfo.AnalyseHit)

	lay := runner.Layout(ctx, res.Payload, popts)
	printSuccess("Analysed %d conversations", len(convs))
	printStats(lay.Stats.Clusters, lay.Stats.Levels, len(lay.Excluded), res.CacheInfo.AnalyseHit)
	printSeries(res.Payload)

	if opts.output != "" {
		if err := cluster.WriteFile(res.Payload, opts.output); err != nil {
			return err
		}
		printFile(opts.output)
	}

	if opts.save != "" {
		snap, err := c.saveSnapshot(ctx, opts.save, res.Payload)
		if err != nil {
			return err
		}
		printSuccess("Saved snapshot %s", StyleHighlight.Render(snap.Name))
		printDetail("id %s", snap.ID)
	}

	if opts.output != "" {
		printNextStep("Explore it", "clustermap browse "+opts.output)
	}
	return nil
}

// printSeries reports the length of each time series in the payload.
func printSeries(a cluster.Analytics) {
	printDetail("series: %d cumulative words · %d messages per chat · %d messages per week · %d new chats per week",
		len(a.CumulativeWords), len(a.MessagesPerChat), len(a.MessagesPerWeek), len(a.NewChatsPerWeek))
}

func (c *CLI) saveSnapshot(ctx context.Context, name string, payload cluster.Analytics) (*snapshot.Snapshot, error) {
	snap, err := snapshot.New(name, payload)
	if err != nil {
		return nil, err
	}
	st, err := c.newStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	if err := st.Put(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
