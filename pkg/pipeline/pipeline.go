// Package pipeline runs the analyse → layout → render sequence shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Analyse: send conversations to the analysis service (cached)
//  2. Layout: build the level map, summaries and diagnostics from a payload
//  3. Render: produce artifacts (DOT, node-link SVG, bubble SVG, JSON)
//
// Each stage can be run on its own. A payload loaded from disk or from a
// snapshot skips straight to Layout:
//
//	runner := pipeline.NewRunner(client, cache, nil, logger)
//	res := runner.Layout(ctx, payload, opts)
//	artifacts, err := runner.Render(ctx, res, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/geometry"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
)

// =============================================================================
// Formats
// =============================================================================

// Output formats.
const (
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatBubble = "bubble"
	FormatJSON   = "json"
)

// AllFormats lists every output format in rendering order.
var AllFormats = []string{FormatDOT, FormatSVG, FormatBubble, FormatJSON}

// Extension returns the file extension used when writing format.
func Extension(format string) string {
	switch format {
	case FormatBubble:
		return ".bubble.svg"
	default:
		return "." + format
	}
}

// ValidateFormat checks that a format is known.
func ValidateFormat(format string) error {
	if !slices.Contains(AllFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, strings.Join(AllFormats, ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Analyse options
	MaxClusters        int  `json:"max_clusters,omitempty"` // 0 lets the service decide
	DisableCheckpoints bool `json:"disable_checkpoints,omitempty"`
	Refresh            bool `json:"refresh,omitempty"` // bypass cached responses

	// Layout options
	PaddingFactor float64 `json:"padding_factor,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // count and share in node-link labels
	Level    int      `json:"level,omitempty"`    // level drawn by the bubble renderer

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	o.PaddingFactor = geometry.Padding(o.PaddingFactor)
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks option ranges.
func (o *Options) Validate() error {
	if o.MaxClusters < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max clusters must not be negative")
	}
	if o.Level < 0 {
		return errors.New(errors.ErrCodeInvalidLevel, "level must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// MaxClustersPtr returns the request value for MaxClusters.
func (o *Options) MaxClustersPtr() *int {
	if o.MaxClusters <= 0 {
		return nil
	}
	n := o.MaxClusters
	return &n
}

// ArtifactKeyOpts returns cache key options for a rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.PayloadKeyOpts {
	k := cache.PayloadKeyOpts{Format: format}
	switch format {
	case FormatBubble:
		k.Padding, k.Level = o.PaddingFactor, o.Level
	case FormatDOT, FormatSVG:
		k.Detailed = o.Detailed
	}
	return k
}

// =============================================================================
// Result
// =============================================================================

// Result collects the outputs of the stages that ran.
type Result struct {
	Payload     cluster.Analytics
	PayloadHash string

	Levels    *hierarchy.LevelMap
	Summaries []hierarchy.LevelSummary
	Excluded  []string

	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timings and sizes.
type Stats struct {
	Conversations int
	Clusters      int
	Levels        int
	AnalyseTime   time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	AnalyseHit bool
	RenderHit  bool
}

func payloadHash(a cluster.Analytics) string {
	data, err := cluster.Marshal(a)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func stageErr(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}
