package view

// ChangeKind identifies which half of the cursor changed.
type ChangeKind int

const (
	Selection ChangeKind = iota // the selected cluster changed
	Hover                       // the hovered cluster changed
)

func (k ChangeKind) String() string {
	if k == Hover {
		return "hover"
	}
	return "selection"
}

// Change describes a cursor transition. An empty id means "none".
type Change struct {
	Kind     ChangeKind
	Previous string
	Current  string
}

// Cursor holds the selected and hovered cluster shared by every view.
type Cursor struct {
	selected  string
	hovered   string
	listeners []func(Change)
}

// OnChange registers fn to be called after every actual change.
func (c *Cursor) OnChange(fn func(Change)) {
	c.listeners = append(c.listeners, fn)
}

// Select makes id the selected cluster.
func (c *Cursor) Select(id string) { c.set(Selection, &c.selected, id) }

// ClearSelection removes the selection.
func (c *Cursor) ClearSelection() { c.set(Selection, &c.selected, "") }

// Selected returns the selected id.
func (c *Cursor) Selected() (string, bool) { return c.selected, c.selected != "" }

// Hover marks id as hovered (pointer enter).
func (c *Cursor) Hover(id string) { c.set(Hover, &c.hovered, id) }

// Unhover clears the hover on pointer leave. A leave event for a cluster that
// is no longer hovered is ignored, so an enter on B followed by a late leave
// on A keeps B.
func (c *Cursor) Unhover(id string) {
	if c.hovered == id {
		c.set(Hover, &c.hovered, "")
	}
}

// Hovered returns the hovered id.
func (c *Cursor) Hovered() (string, bool) { return c.hovered, c.hovered != "" }

// Reset clears both selection and hover.
func (c *Cursor) Reset() {
	c.ClearSelection()
	c.set(Hover, &c.hovered, "")
}

// Active returns the hovered id, falling back to the selection.
func (c *Cursor) Active() string {
	if c.hovered != "" {
		return c.hovered
	}
	return c.selected
}

func (c *Cursor) set(kind ChangeKind, field *string, id string) {
	if *field == id {
		return
	}
	ch := Change{Kind: kind, Previous: *field, Current: id}
	*field = id
	for _, fn := range c.listeners {
		fn(ch)
	}
}
