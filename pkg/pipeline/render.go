package pipeline

import (
	"context"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/render/bubble"
	"github.com/matzehuels/clustermap/pkg/render/nodelink"
)

// RenderFormat renders a single format without caching.
func RenderFormat(ctx context.Context, res *Result, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(nodelink.ToDOT(res.Levels, nodelinkOptions(opts))), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(res.Levels, nodelinkOptions(opts)))
	case FormatBubble:
		if res.Levels.Depth() > 0 && opts.Level >= res.Levels.Depth() {
			return nil, errors.New(errors.ErrCodeInvalidLevel, "level %d out of range (hierarchy has %d levels)", opts.Level, res.Levels.Depth())
		}
		return bubble.RenderSVG(res.Levels, opts.Level, bubble.Options{
			PaddingFactor: opts.PaddingFactor,
			Labels:        opts.Detailed,
		}), nil
	case FormatJSON:
		return cluster.Marshal(res.Payload)
	default:
		return nil, ValidateFormat(format)
	}
}

func nodelinkOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed}
}
