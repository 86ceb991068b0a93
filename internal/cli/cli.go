// Package cli implements the clustermap command-line interface.
//
// Commands turn chat exports into conversations, send them to the analysis
// service, and explore the resulting cluster hierarchy as tables, trees,
// rendered images, an interactive browser or an HTTP API.
//
// # Commands
//
//   - import: normalize Claude or Kura exports into conversations
//   - analyse: run the analysis service and save the payload
//   - levels, tree: print the hierarchy
//   - browse: interactive tree and point map
//   - render: DOT, node-link SVG, bubble SVG or JSON output
//   - snapshot: manage stored payloads
//   - serve: HTTP API over stored snapshots
//   - cache: manage the analysis response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline, cache and HTTP events through the observability hooks.
package cli

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/analysis"
	"github.com/matzehuels/clustermap/pkg/buildinfo"
	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/config"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/observability"
	"github.com/matzehuels/clustermap/pkg/pipeline"
	"github.com/matzehuels/clustermap/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "clustermap"

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
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and built-in config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Clustermap explores topic hierarchies of chat conversations",
		Long:              `Clustermap sends chat histories to an analysis service and lets you explore the resulting cluster hierarchy level by level, as tables, trees, images, an interactive browser or an HTTP API.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/clustermap/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.analyseCommand())
	root.AddCommand(c.levelsCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config and configures logging before any command runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.Config = cfg

	configureLogger(c.Logger, cfg.Log, c.verbose)
	if c.verbose {
		observability.NewLogHooks(c.Logger).Register()
	}
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the configured response cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.Config.Cache
	switch cc.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cc.RedisAddr, DB: cc.RedisDB})
	default:
		return cache.NewFileCache(cc.Dir)
	}
}

// newStore opens the configured snapshot store.
func (c *CLI) newStore(ctx context.Context) (snapshot.Store, error) {
	sc := c.Config.Store
	if sc.Backend == config.BackendMongo {
		return snapshot.NewMongoStore(ctx, sc.MongoURI, sc.Database)
	}
	return snapshot.NewFileStore(sc.Dir)
}

// newClient creates an analysis client for server, falling back to the
// configured address.
func (c *CLI) newClient(server string, cc cache.Cache) (*analysis.Client, error) {
	if server == "" {
		server = c.Config.Analysis.Server
	}
	opts := []analysis.Option{
		analysis.WithCache(cc, c.Config.Cache.TTL.Duration),
		analysis.WithLogger(c.Logger),
	}
	if t := c.Config.Analysis.Timeout.Duration; t > 0 {
		opts = append(opts, analysis.WithHTTPClient(&http.Client{Timeout: t}))
	}
	return analysis.New(server, opts...)
}

// newRunner creates a pipeline runner for CLI use. The analyser may be nil
// for commands that start from an existing payload.
func (c *CLI) newRunner(a pipeline.Analyser, cc cache.Cache) *pipeline.Runner {
	return pipeline.NewRunner(a, cc, nil, c.Logger)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pipelineOptionsFor returns layout options taken from the config.
func pipelineOptionsFor(c *CLI) pipeline.Options {
	return pipeline.Options{
		PaddingFactor: c.Config.Layout.PaddingFactor,
		Logger:        c.Logger,
	}
}

// ExitCode maps err onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsCanceled(err):
		return 130
	}
	switch errors.FamilyOf(err) {
	case errors.FamilyInvalid:
		return 2
	case errors.FamilyNotFound:
		return 3
	case errors.FamilyUpstream:
		return 4
	}
	return 1
}
