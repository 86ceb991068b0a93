package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
)

// Options configures node-link rendering.
type Options struct {
	// Detailed adds the count and level share to each label.
	Detailed bool
	// MaxDepth limits the levels drawn. Zero draws all of them.
	MaxDepth int
	// Highlight marks one cluster id with a thicker outline.
	Highlight string
}

// maxLabel truncates long cluster names.
const maxLabel = 40

// ToDOT converts the hierarchy to Graphviz DOT. Clusters of the same depth
// share a rank; siblings appear in input order.
func ToDOT(lm *hierarchy.LevelMap, opts Options) string {
	depth := lm.Depth()
	if opts.MaxDepth > 0 {
		depth = min(depth, opts.MaxDepth)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.6, color=\"#888888\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.25;\n")

	for d := range depth {
		level := lm.Level(d)
		shares := hierarchy.LevelShares(level)
		fmt.Fprintf(&buf, "\n  subgraph level_%d {\n    rank=same;\n", d)
		for i, c := range level {
			fmt.Fprintf(&buf, "    %q [%s];\n", c.ID, strings.Join(attrs(c, shares[i], d, opts), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for d := 1; d < depth; d++ {
		for _, c := range lm.Level(d) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.Parent(), c.ID)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

var levelFills = []string{"#dbeafe", "#dcfce7", "#fef9c3", "#fce7f3", "#ede9fe"}

func attrs(c cluster.Cluster, share float64, depth int, opts Options) []string {
	out := []string{
		fmt.Sprintf("label=%q", label(c, share, opts.Detailed)),
		fmt.Sprintf("fillcolor=%q", levelFills[depth%len(levelFills)]),
	}
	if c.Description != "" {
		out = append(out, fmt.Sprintf("tooltip=%q", c.Description))
	}
	if opts.Highlight != "" && c.ID == opts.Highlight {
		out = append(out, "penwidth=3")
	}
	return out
}

func label(c cluster.Cluster, share float64, detailed bool) string {
	name := truncate(c.DisplayName(), maxLabel)
	if !detailed {
		return name
	}
	return fmt.Sprintf("%s\n%.1f%% • %d", name, share, c.Count)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RenderSVG lays out DOT source with Graphviz and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// zero-origin viewBox so the output scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
