package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file (single format) or base path
	formats  string  // comma-separated formats
	detailed bool    // count and share in node-link labels, names in bubble maps
	level    int     // level drawn by the bubble renderer
	padding  float64 // footprint padding factor
	noCache  bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <payload.json|snapshot>",
		Short: "Render the hierarchy as DOT, SVG, bubble map or JSON",
		Long: `Render writes one file per format:

  dot     Graphviz source, one rank per level
  svg     node-link diagram laid out by Graphviz
  bubble  point map of one level with child footprints
  json    the validated payload`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSnapshots,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], formats, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), dot, bubble, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show counts and shares in labels")
	cmd.Flags().IntVar(&opts.level, "level", 0, "level drawn by the bubble map")
	cmd.Flags().Float64Var(&opts.padding, "padding", 0, "footprint padding factor (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, ref string, formats []string, opts renderOpts) error {
	payload, label, err := c.loadPayload(ctx, ref)
	if err != nil {
		return err
	}

	cc, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	runner := c.newRunner(nil, cc)
	defer runner.Close()

	popts := pipelineOptionsFor(c)
	popts.Formats = formats
	popts.Detailed = opts.detailed
	popts.Level = opts.level
	if opts.padding > 0 {
		popts.PaddingFactor = opts.padding
	}

	prog := newProgress(c.Logger)
	res := runner.Layout(ctx, payload, popts)
	artifacts, err := runner.Render(ctx, res, popts)
	if err != nil {
		return err
	}
	prog.done("rendered", "formats", strings.Join(formats, ","))

	printSuccess("Rendered %s", StyleHighlight.Render(label))
	printStats(res.Stats.Clusters, res.Stats.Levels, len(res.Excluded), res.CacheInfo.RenderHit)

	base := outputBase(ref, opts.output, formats)
	for _, f := range formats {
		path := outputPath(base, opts.output, f, len(formats))
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputBase returns the base path that format extensions are appended to.
func outputBase(ref, output string, formats []string) string {
	if output != "" {
		if len(formats) == 1 {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if _, err := os.Stat(ref); err == nil {
		return strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	}
	return appName
}

func outputPath(base, output, format string, n int) string {
	if output != "" && n == 1 {
		return output
	}
	return base + pipeline.Extension(format)
}
