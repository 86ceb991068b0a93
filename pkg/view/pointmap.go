package view

import (
	"math"

	"github.com/matzehuels/clustermap/pkg/geometry"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
)

// MapPoint is a cluster of the current level positioned in embedding space.
type MapPoint struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Count int     `json:"count"`
}

// Bubble is the area occupied by the children of a cluster.
type Bubble struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Center    geometry.Point     `json:"center"`
	Footprint geometry.Footprint `json:"footprint"`
	Radius    float64            `json:"radius"`
	Children  int                `json:"children"`
}

// PointMap shows one level of the hierarchy at a time.
type PointMap struct {
	lm      *hierarchy.LevelMap
	level   int
	padding float64
}

// NewPointMap returns a point map positioned on the root level.
// The padding goes through [geometry.Padding].
func NewPointMap(lm *hierarchy.LevelMap, padding float64) *PointMap {
	return &PointMap{lm: lm, padding: geometry.Padding(padding)}
}

// Reset replaces the hierarchy and returns to the root level.
func (p *PointMap) Reset(lm *hierarchy.LevelMap) {
	p.lm = lm
	p.level = 0
}

// Level returns the displayed depth.
func (p *PointMap) Level() int { return p.level }

// SetLevel moves to depth d, clamped to the available levels.
func (p *PointMap) SetLevel(d int) {
	p.level = max(min(d, p.lm.Depth()-1), 0)
}

// Up moves one level towards the roots.
func (p *PointMap) Up() { p.SetLevel(p.level - 1) }

// Down moves one level towards the leaves.
func (p *PointMap) Down() { p.SetLevel(p.level + 1) }

// Points returns the clusters of the current level.
func (p *PointMap) Points() []MapPoint {
	level := p.lm.Level(p.level)
	out := make([]MapPoint, len(level))
	for i, c := range level {
		out[i] = MapPoint{ID: c.ID, Name: c.DisplayName(), X: c.X, Y: c.Y, Count: c.Count}
	}
	return out
}

// Bubbles returns, for each cluster of the current level with children, the
// footprint of those children centered on their bounding box.
func (p *PointMap) Bubbles() []Bubble {
	return Bubbles(p.lm, p.level, p.padding)
}

// Bubbles computes the child footprints for every parent at depth d.
func Bubbles(lm *hierarchy.LevelMap, d int, padding float64) []Bubble {
	var out []Bubble
	for _, c := range lm.Level(d) {
		children := lm.Children(c.ID)
		if len(children) == 0 {
			continue
		}
		pts := make([]geometry.Point, len(children))
		for i, ch := range children {
			pts[i] = geometry.Point{X: ch.X, Y: ch.Y}
		}
		fp := geometry.EstimateFootprint(pts, padding)
		out = append(out, Bubble{
			ID:        c.ID,
			Name:      c.DisplayName(),
			Center:    geometry.BoundingBox(pts).Center(),
			Footprint: fp,
			Radius:    geometry.Radius(fp.Size),
			Children:  len(children),
		})
	}
	return out
}

// Bounds returns the bounding box of the current level's points.
func (p *PointMap) Bounds() geometry.Bounds {
	pts := p.Points()
	gp := make([]geometry.Point, len(pts))
	for i, pt := range pts {
		gp[i] = geometry.Point{X: pt.X, Y: pt.Y}
	}
	return geometry.BoundingBox(gp)
}

// Nearest returns the point of the current level closest to (x, y).
func (p *PointMap) Nearest(x, y float64) (MapPoint, bool) {
	var (
		best  MapPoint
		found bool
		dist  = math.Inf(1)
	)
	for _, pt := range p.Points() {
		if d := math.Hypot(pt.X-x, pt.Y-y); d < dist {
			best, dist, found = pt, d, true
		}
	}
	return best, found
}

// Raster projects the current level onto a width×height character grid.
// Each cell holds the index into Points of the cluster drawn there, or -1.
// When two clusters share a cell the later one wins. Y grows upwards in
// embedding space and downwards on screen.
func (p *PointMap) Raster(width, height int) [][]int {
	if width <= 0 || height <= 0 {
		return nil
	}
	grid := make([][]int, height)
	for r := range grid {
		grid[r] = make([]int, width)
		for c := range grid[r] {
			grid[r][c] = -1
		}
	}
	b := p.Bounds()
	for i, pt := range p.Points() {
		col, row := project(b, pt.X, pt.Y, width, height)
		grid[row][col] = i
	}
	return grid
}

// At returns the point drawn within one cell of (col, row) on the
// width×height grid of [PointMap.Raster]. Closer cells win; on a tie the
// point Raster draws on top wins. Empty space reports false.
func (p *PointMap) At(col, row, width, height int) (MapPoint, bool) {
	if width <= 0 || height <= 0 {
		return MapPoint{}, false
	}
	var (
		best  MapPoint
		found bool
		dist  = 2
	)
	b := p.Bounds()
	for _, pt := range p.Points() {
		c, r := project(b, pt.X, pt.Y, width, height)
		if d := max(absInt(c-col), absInt(r-row)); d <= dist {
			best, dist, found = pt, d, true
		}
	}
	return best, found
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Unproject maps a grid cell back into embedding space.
func (p *PointMap) Unproject(col, row, width, height int) (x, y float64) {
	b := p.Bounds()
	if width > 1 {
		x = b.MinX + float64(col)/float64(width-1)*b.Width()
	} else {
		x = b.Center().X
	}
	if height > 1 {
		y = b.MaxY - float64(row)/float64(height-1)*b.Height()
	} else {
		y = b.Center().Y
	}
	return x, y
}

func project(b geometry.Bounds, x, y float64, width, height int) (col, row int) {
	col, row = width/2, height/2
	if w := b.Width(); w > 0 {
		col = int(math.Round((x - b.MinX) / w * float64(width-1)))
	}
	if h := b.Height(); h > 0 {
		row = int(math.Round((b.MaxY - y) / h * float64(height-1)))
	}
	return min(max(col, 0), width-1), min(max(row, 0), height-1)
}
