// Package geometry derives the visual footprint of a parent cluster from the
// spatial spread of its children.
//
// Everything here is pure and works on any point set; it has no knowledge of
// the cluster hierarchy. Degenerate inputs (no points, a single point, or
// coincident points) produce [DefaultFootprint] rather than an error.
package geometry

import "math"

const (
	// DefaultPaddingFactor scales footprints when callers pass a non-positive factor.
	DefaultPaddingFactor = 1.5

	// PaddingFraction is the extra room added to width and height, as a
	// fraction of the diagonal-based size, before padding-factor scaling.
	PaddingFraction = 0.2

	// SizeScale converts the padded diagonal into the bubble size unit.
	SizeScale = 100
)

// DefaultFootprint is returned for empty or zero-extent point sets.
var DefaultFootprint = Footprint{Size: 140, Width: 50, Height: 50}

// Point is a position in the 2-D embedding space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Contains reports whether p lies inside or on the edge of b.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Diagonal returns the length of the box diagonal.
func (b Bounds) Diagonal() float64 { return math.Hypot(b.Width(), b.Height()) }

// BoundingBox returns the smallest box containing every point.
// An empty slice yields the zero Bounds.
func BoundingBox(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b.MinX = min(b.MinX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxX = max(b.MaxX, p.X)
		b.MaxY = max(b.MaxY, p.Y)
	}
	return b
}

// Footprint is the rendered extent of a parent cluster.
// Size is a radius-squared proxy for bubble rendering (see [Radius]);
// Width and Height describe the enclosing rectangle.
type Footprint struct {
	Size   float64 `json:"size"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EstimateFootprint computes the footprint enclosing points.
//
// Size is derived from the bounding-box diagonal so that diagonal spreads
// are fully covered. Width and Height get PaddingFraction of that size as
// extra room before scaling by paddingFactor. paddingFactor goes through
// [Padding]. Empty input and boxes with a zero diagonal
// return DefaultFootprint.
//
// The result depends only on the box extents, so translating every point by
// the same offset leaves it unchanged.
func EstimateFootprint(points []Point, paddingFactor float64) Footprint {
	if len(points) == 0 {
		return DefaultFootprint
	}
	paddingFactor = Padding(paddingFactor)

	b := BoundingBox(points)
	w, h := b.Width(), b.Height()
	diagonal := math.Hypot(w, h)
	if diagonal == 0 {
		return DefaultFootprint
	}

	base := diagonal * paddingFactor
	pad := base * PaddingFraction
	return Footprint{
		Size:   base * SizeScale,
		Width:  (w + pad) * paddingFactor,
		Height: (h + pad) * paddingFactor,
	}
}

// Padding returns f, or DefaultPaddingFactor when f is not a positive
// finite number.
func Padding(f float64) float64 {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultPaddingFactor
	}
	return f
}

// Radius converts a footprint size into a circle radius (size = π·r²).
func Radius(size float64) float64 {
	if size <= 0 {
		return 0
	}
	return math.Sqrt(size / math.Pi)
}

// Rect returns the footprint rectangle centered on c.
func (f Footprint) Rect(c Point) Bounds {
	return Bounds{
		MinX: c.X - f.Width/2,
		MinY: c.Y - f.Height/2,
		MaxX: c.X + f.Width/2,
		MaxY: c.Y + f.Height/2,
	}
}
