// Package bubble renders one level of the cluster point map as SVG.
//
// Every cluster of the level is drawn as a point at its embedding
// coordinates. Clusters with children also get a translucent bubble: the
// circle around the footprint rectangle of those children, so the picture
// shows how far each topic spreads in the next level down. Hovering a point or
// bubble highlights both.
package bubble

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/clustermap/pkg/geometry"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
	"github.com/matzehuels/clustermap/pkg/view"
)

const (
	// DefaultWidth and DefaultHeight size the output frame.
	DefaultWidth  = 960.0
	DefaultHeight = 720.0

	margin    = 40.0
	pointSize = 6.0
)

const interactionCSS = `
    .bubble { fill: #3b82f6; fill-opacity: 0.12; stroke: #3b82f6; stroke-opacity: 0.5; transition: fill-opacity 0.2s ease; }
    .point { fill: #1e3a8a; transition: r 0.2s ease; }
    .label { font: 11px sans-serif; fill: #334155; pointer-events: none; }
    .bubble.highlight { fill-opacity: 0.3; stroke-width: 2; }
    .point.highlight { fill: #f97316; }`

const interactionJS = `
    function highlight(id) {
      document.querySelectorAll('[data-cluster]').forEach(el => el.classList.toggle('highlight', el.dataset.cluster === id));
    }
    document.querySelectorAll('[data-cluster]').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.cluster));
      el.addEventListener('mouseleave', () => highlight(null));
    });`

// Options configures rendering.
type Options struct {
	Width, Height float64
	PaddingFactor float64
	Labels        bool   // draw cluster names next to points
	Highlight     string // cluster id drawn highlighted
}

// RenderSVG draws level d of lm. Out-of-range levels produce an empty frame.
func RenderSVG(lm *hierarchy.LevelMap, d int, opts Options) []byte {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	pm := view.NewPointMap(lm, opts.PaddingFactor)
	pm.SetLevel(d)
	points := pm.Points()
	bubbles := pm.Bubbles()
	if d != pm.Level() {
		points, bubbles = nil, nil
	}

	fr := newFrame(points, bubbles, opts.Width, opts.Height)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)

	for _, b := range bubbles {
		cx, cy := fr.project(b.Center.X, b.Center.Y)
		fmt.Fprintf(&buf, `  <circle class="bubble" data-cluster="%s" cx="%.2f" cy="%.2f" r="%.2f"><title>%s (%d children)</title></circle>`+"\n",
			escape(b.ID), cx, cy, enclosingRadius(b.Footprint)*fr.scale, escape(b.Name), b.Children)
	}
	for _, p := range points {
		x, y := fr.project(p.X, p.Y)
		class := "point"
		if p.ID == opts.Highlight {
			class += " highlight"
		}
		fmt.Fprintf(&buf, `  <circle class="%s" data-cluster="%s" cx="%.2f" cy="%.2f" r="%.1f"><title>%s</title></circle>`+"\n",
			class, escape(p.ID), x, y, pointSize/2, escape(p.Name))
		if opts.Labels {
			fmt.Fprintf(&buf, `  <text class="label" x="%.2f" y="%.2f">%s</text>`+"\n", x+pointSize, y+pointSize/2, escape(p.Name))
		}
	}

	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
	fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// frame maps embedding coordinates into the drawable area, keeping the
// aspect ratio and flipping Y so that it grows upwards.
type frame struct {
	bounds     geometry.Bounds
	scale      float64
	offX, offY float64
	height     float64
}

func newFrame(points []view.MapPoint, bubbles []view.Bubble, width, height float64) frame {
	var pts []geometry.Point
	for _, p := range points {
		pts = append(pts, geometry.Point{X: p.X, Y: p.Y})
	}
	for _, b := range bubbles {
		r := enclosingRadius(b.Footprint)
		pts = append(pts,
			geometry.Point{X: b.Center.X - r, Y: b.Center.Y - r},
			geometry.Point{X: b.Center.X + r, Y: b.Center.Y + r})
	}
	bb := geometry.BoundingBox(pts)

	availW, availH := width-2*margin, height-2*margin
	scale := 1.0
	if w, h := bb.Width(), bb.Height(); w > 0 || h > 0 {
		scale = math.Min(safeDiv(availW, w), safeDiv(availH, h))
	}
	return frame{
		bounds: bb,
		scale:  scale,
		offX:   margin + (availW-bb.Width()*scale)/2,
		offY:   margin + (availH-bb.Height()*scale)/2,
		height: height,
	}
}

func (f frame) project(x, y float64) (float64, float64) {
	px := f.offX + (x-f.bounds.MinX)*f.scale
	py := f.height - (f.offY + (y-f.bounds.MinY)*f.scale)
	return px, py
}

// enclosingRadius is the radius of the circle through the corners of the
// footprint rectangle.
func enclosingRadius(f geometry.Footprint) float64 {
	return math.Hypot(f.Width, f.Height) / 2
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return a / b
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
