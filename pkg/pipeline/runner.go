package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clustermap/pkg/analysis"
	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/conversation"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
	"github.com/matzehuels/clustermap/pkg/observability"
)

// Analyser is the analysis service as seen by the pipeline.
type Analyser interface {
	Analyse(ctx context.Context, req conversation.AnalyseRequest, refresh bool) (*analysis.Response, error)
}

// Runner executes pipeline stages with artifact caching. It holds no
// per-run state, so one Runner can serve concurrent runs.
type Runner struct {
	Analyser Analyser
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil cache disables artifact caching, a nil
// keyer uses the default one. The analyser may be nil when only Layout and
// Render are used.
func NewRunner(a Analyser, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Analyser: a, Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs all three stages.
func (r *Runner) Execute(ctx context.Context, convs []conversation.Conversation, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	res, err := r.Analyse(ctx, convs, opts)
	if err != nil {
		return nil, err
	}
	lay := r.Layout(ctx, res.Payload, opts)
	lay.Stats.Conversations = res.Stats.Conversations
	lay.Stats.AnalyseTime = res.Stats.AnalyseTime
	lay.CacheInfo.AnalyseHit = res.CacheInfo.AnalyseHit

	if _, err := r.Render(ctx, lay, opts); err != nil {
		return nil, err
	}
	return lay, nil
}

// Analyse sends convs to the analysis service and returns the validated
// payload.
func (r *Runner) Analyse(ctx context.Context, convs []conversation.Conversation, opts Options) (*Result, error) {
	if r.Analyser == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no analysis service configured")
	}
	if err := conversation.ValidateAll(convs); err != nil {
		return nil, stageErr("analyse", err)
	}
	r.applyLogger(&opts)

	req := conversation.AnalyseRequest{
		Data:               convs,
		MaxClusters:        opts.MaxClustersPtr(),
		DisableCheckpoints: opts.DisableCheckpoints,
	}

	hooks := observability.Pipeline()
	hooks.OnAnalyseStart(ctx, len(convs))
	start := time.Now()
	resp, err := r.Analyser.Analyse(ctx, req, opts.Refresh)
	if err != nil {
		hooks.OnAnalyseComplete(ctx, 0, false, time.Since(start), err)
		return nil, stageErr("analyse", err)
	}
	hooks.OnAnalyseComplete(ctx, len(resp.Payload.Clusters), resp.Cached, time.Since(start), nil)

	opts.Logger.Info("analysed conversations",
		"conversations", len(convs),
		"messages", conversation.MessageCount(convs),
		"clusters", len(resp.Payload.Clusters),
		"cached", resp.Cached,
		"duration", resp.Duration)

	return &Result{
		Payload:     resp.Payload,
		PayloadHash: cache.Hash(resp.Raw),
		Stats: Stats{
			Conversations: len(convs),
			Clusters:      len(resp.Payload.Clusters),
			AnalyseTime:   time.Since(start),
		},
		CacheInfo: CacheInfo{AnalyseHit: resp.Cached},
	}, nil
}

// Layout builds the hierarchy of payload. It never fails: clusters that
// cannot be placed are reported in Result.Excluded and logged.
func (r *Runner) Layout(ctx context.Context, payload cluster.Analytics, opts Options) *Result {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(payload.Clusters))
	start := time.Now()

	lm := hierarchy.Build(payload.Clusters)
	res := &Result{
		Payload:     payload,
		PayloadHash: payloadHash(payload),
		Levels:      lm,
		Summaries:   hierarchy.Summarize(lm),
		Excluded:    lm.Excluded(),
		Artifacts:   make(map[string][]byte),
	}
	res.Stats.Clusters = len(payload.Clusters)
	res.Stats.Levels = lm.Depth()
	res.Stats.LayoutTime = time.Since(start)
	hooks.OnLayoutComplete(ctx, lm.Depth(), len(res.Excluded), res.Stats.LayoutTime)

	if n := len(res.Excluded); n > 0 {
		opts.Logger.Warn("clusters unreachable from any root were left out", "count", n, "ids", abbreviate(res.Excluded, 5))
	}
	if mm := lm.LevelMismatches(); len(mm) > 0 {
		opts.Logger.Debug("declared levels differ from the parent chain", "count", len(mm), "ids", abbreviate(mm, 5))
	}
	opts.Logger.Debug("built hierarchy", "levels", lm.Depth(), "placed", lm.Len(), "duration", res.Stats.LayoutTime)
	return res
}

// Render produces the requested formats for a laid-out result and stores
// them in res.Artifacts. Artifacts already cached for the same payload and
// options are reused.
func (r *Runner) Render(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if res.Levels == nil {
		res.Levels = hierarchy.Build(res.Payload.Clusters)
	}
	if res.Artifacts == nil {
		res.Artifacts = make(map[string][]byte)
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	hits := 0
	for _, format := range opts.Formats {
		key := r.Keyer.PayloadKey(res.PayloadHash, opts.ArtifactKeyOpts(format))
		if data, ok := r.cached(ctx, key); ok {
			hits++
			res.Artifacts[format] = data
			continue
		}
		data, err := RenderFormat(ctx, res, format, opts)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, stageErr("render", err)
		}
		res.Artifacts[format] = data
		if res.PayloadHash != "" {
			_ = r.Cache.Set(ctx, key, data, cache.DefaultTTL)
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.RenderHit = hits == len(opts.Formats)
	hooks.OnRenderComplete(ctx, opts.Formats, res.Stats.RenderTime, nil)
	opts.Logger.Debug("rendered", "formats", opts.Formats, "cached", hits, "duration", res.Stats.RenderTime)
	return res.Artifacts, nil
}

func (r *Runner) cached(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return data, true
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func abbreviate(ids []string, n int) []string {
	if len(ids) <= n {
		return ids
	}
	return append(ids[:n:n], "…")
}
