package view

// Viewport is the visible window of a scrolling list.
type Viewport struct {
	Offset int // index of the first visible row
	Height int // number of visible rows
}

// Visible reports whether row is inside the window.
func (v Viewport) Visible(row int) bool {
	return row >= v.Offset && row < v.Offset+v.Height
}

// ScrollIntoView centers row in the window if it is currently hidden. total
// is the number of rows in the list. A visible row never moves the window,
// so repeated calls are no-ops. It reports whether the offset changed.
func (v *Viewport) ScrollIntoView(row, total int) bool {
	if v.Height <= 0 || row < 0 || row >= total || v.Visible(row) {
		return false
	}
	offset := row - v.Height/2
	offset = min(offset, total-v.Height)
	offset = max(offset, 0)
	if offset == v.Offset {
		return false
	}
	v.Offset = offset
	return true
}

// Scroll moves the window by delta rows, clamped to the list.
func (v *Viewport) Scroll(delta, total int) {
	v.Offset = max(min(v.Offset+delta, total-v.Height), 0)
}

// Clamp keeps the window inside a list of total rows. Call it after the list
// shrinks.
func (v *Viewport) Clamp(total int) { v.Scroll(0, total) }
