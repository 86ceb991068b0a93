package view

import (
	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
)

// IntentKind is a user action reported by one of the views.
type IntentKind int

// Intent kinds. Hover and select intents carry the id of the cluster under
// the pointer or cursor.
const (
	HoverTree  IntentKind = iota // pointer entered a tree row
	HoverMap                     // pointer entered a map point
	Leave                        // pointer left the hovered cluster; clears it only if ID is still hovered
	SelectTree                   // a tree row was selected
	SelectMap                    // a map point was selected
	ToggleTree                   // expand or collapse a tree row
)

var intentNames = [...]string{"hover-tree", "hover-map", "leave", "select-tree", "select-map", "toggle-tree"}

func (k IntentKind) String() string {
	if int(k) < len(intentNames) {
		return intentNames[k]
	}
	return "unknown"
}

// Intent is a user action on a cluster.
type Intent struct {
	Kind IntentKind
	ID   string
}

// Options configures an [Explorer].
type Options struct {
	ListHeight    int     // visible rows of the tree list
	PaddingFactor float64 // footprint scaling for the point map
}

// Explorer coordinates the tree, the point map and the shared cursor.
type Explorer struct {
	gen     uint64
	loaded  bool
	payload *cluster.Analytics
	lm      *hierarchy.LevelMap

	tree   *Tree
	points *PointMap
	cursor Cursor
	list   Viewport
}

// NewExplorer returns an explorer with no data loaded.
func NewExplorer(opts Options) *Explorer {
	e := &Explorer{
		tree:   NewTree(nil),
		points: NewPointMap(nil, opts.PaddingFactor),
		list:   Viewport{Height: opts.ListHeight},
	}
	e.cursor.OnChange(e.follow)
	return e
}

// Load replaces the data with payload. Loads tagged with a generation older
// than the current one are dropped and Load returns false, so a slow response
// can never overwrite a newer one.
func (e *Explorer) Load(generation uint64, payload *cluster.Analytics) bool {
	if e.loaded && generation < e.gen {
		return false
	}
	e.gen, e.loaded = generation, true
	e.payload = payload

	var clusters []cluster.Cluster
	if payload != nil {
		clusters = payload.Clusters
	}
	e.lm = hierarchy.Build(clusters)
	e.tree.Reset(e.lm)
	e.points.Reset(e.lm)
	e.cursor.Reset()
	e.list.Offset = 0
	return true
}

// Generation returns the generation of the loaded payload.
func (e *Explorer) Generation() uint64 { return e.gen }

// Payload returns the loaded payload, or nil.
func (e *Explorer) Payload() *cluster.Analytics { return e.payload }

// LevelMap returns the hierarchy of the loaded payload.
func (e *Explorer) LevelMap() *hierarchy.LevelMap { return e.lm }

// Tree returns the tree view state.
func (e *Explorer) Tree() *Tree { return e.tree }

// PointMap returns the point map view state.
func (e *Explorer) PointMap() *PointMap { return e.points }

// Cursor returns the shared cursor. Views read from it; they change it only
// through [Explorer.Dispatch].
func (e *Explorer) Cursor() *Cursor { return &e.cursor }

// List returns the tree list viewport.
func (e *Explorer) List() *Viewport { return &e.list }

// SetListHeight resizes the tree list window.
func (e *Explorer) SetListHeight(h int) {
	e.list.Height = max(h, 0)
	e.list.Clamp(len(e.tree.Rows()))
}

// Dispatch applies an intent.
func (e *Explorer) Dispatch(in Intent) {
	switch in.Kind {
	case HoverTree, HoverMap:
		e.cursor.Hover(in.ID)
	case Leave:
		e.cursor.Unhover(in.ID)
	case SelectTree, SelectMap:
		e.cursor.Select(in.ID)
	case ToggleTree:
		e.tree.Toggle(in.ID)
		e.list.Clamp(len(e.tree.Rows()))
	}
}

// Selected returns the selected cluster.
func (e *Explorer) Selected() (cluster.Cluster, bool) {
	id, ok := e.cursor.Selected()
	if !ok {
		return cluster.Cluster{}, false
	}
	return e.lm.Cluster(id)
}

// follow scrolls the tree list to a newly hovered row that is out of view.
func (e *Explorer) follow(ch Change) {
	if ch.Kind != Hover || ch.Current == "" {
		return
	}
	rows := e.tree.Rows()
	for i, r := range rows {
		if r.Cluster.ID == ch.Current {
			e.list.ScrollIntoView(i, len(rows))
			return
		}
	}
}
