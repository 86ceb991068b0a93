package geometry

// Within reports whether a marker of nodeSize centered at p fits inside the
// footprint rectangle centered on parent. A footprint with no width or height
// places no constraint.
func Within(p, parent Point, f Footprint, nodeSize float64) bool {
	if f.Width == 0 || f.Height == 0 {
		return true
	}
	half := nodeSize / 2
	r := f.Rect(parent)
	return p.X >= r.MinX+half && p.X <= r.MaxX-half &&
		p.Y >= r.MinY+half && p.Y <= r.MaxY-half
}

// Constrain clamps p so that a marker of nodeSize stays inside the footprint
// rectangle centered on parent.
func Constrain(p, parent Point, f Footprint, nodeSize float64) Point {
	if f.Width == 0 || f.Height == 0 {
		return p
	}
	half := nodeSize / 2
	r := f.Rect(parent)
	return Point{
		X: min(max(p.X, r.MinX+half), r.MaxX-half),
		Y: min(max(p.Y, r.MinY+half), r.MaxY-half),
	}
}
