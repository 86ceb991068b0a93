package view

import (
	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
)

// Row is one visible line of the tree.
type Row struct {
	Cluster     cluster.Cluster
	Depth       int
	Expanded    bool
	HasChildren bool
	ChildCount  int
	Share       float64 // percentage of the row's own level
}

// Tree is the expansion state of a cluster hierarchy. Every node starts
// collapsed.
type Tree struct {
	lm       *hierarchy.LevelMap
	expanded map[string]bool
}

// NewTree returns a fully collapsed tree over lm.
func NewTree(lm *hierarchy.LevelMap) *Tree {
	return &Tree{lm: lm, expanded: make(map[string]bool)}
}

// Reset replaces the hierarchy and collapses every node.
func (t *Tree) Reset(lm *hierarchy.LevelMap) {
	t.lm = lm
	clear(t.expanded)
}

// LevelMap returns the hierarchy the tree is built on.
func (t *Tree) LevelMap() *hierarchy.LevelMap { return t.lm }

// IsExpanded reports whether id is expanded.
func (t *Tree) IsExpanded(id string) bool { return t.expanded[id] }

// Toggle flips the expansion of id and returns the new state.
func (t *Tree) Toggle(id string) bool {
	if t.expanded[id] {
		t.Collapse(id)
		return false
	}
	t.Expand(id)
	return true
}

// Expand marks id as expanded.
func (t *Tree) Expand(id string) { t.expanded[id] = true }

// Collapse marks id as collapsed. Descendants keep their own state.
func (t *Tree) Collapse(id string) { delete(t.expanded, id) }

// ExpandAll expands every cluster that has children.
func (t *Tree) ExpandAll() {
	for d := range t.lm.Depth() {
		for _, c := range t.lm.Level(d) {
			if t.lm.HasChildren(c.ID) {
				t.expanded[c.ID] = true
			}
		}
	}
}

// CollapseAll collapses every cluster.
func (t *Tree) CollapseAll() { clear(t.expanded) }

// Reveal expands every ancestor of id so that its row becomes visible.
func (t *Tree) Reveal(id string) {
	for _, a := range t.lm.Ancestors(id) {
		t.expanded[a] = true
	}
}

// Children returns the children of id straight from the hierarchy.
func (t *Tree) Children(id string) []cluster.Cluster { return t.lm.Children(id) }

// Rows returns the visible rows in depth-first order: roots in input order,
// each followed by its children when expanded.
func (t *Tree) Rows() []Row {
	var rows []Row
	for _, c := range t.lm.Roots() {
		rows = t.appendRows(rows, c, 0)
	}
	return rows
}

func (t *Tree) appendRows(rows []Row, c cluster.Cluster, depth int) []Row {
	children := t.lm.Children(c.ID)
	expanded := t.expanded[c.ID]
	share, _ := hierarchy.ShareOf(t.lm, c.ID)
	rows = append(rows, Row{
		Cluster:     c,
		Depth:       depth,
		Expanded:    expanded,
		HasChildren: len(children) > 0,
		ChildCount:  len(children),
		Share:       share,
	})
	if !expanded {
		return rows
	}
	for _, child := range children {
		rows = t.appendRows(rows, child, depth+1)
	}
	return rows
}

// RowIndex returns the position of id in Rows, or -1 if it is not visible.
func (t *Tree) RowIndex(id string) int {
	for i, r := range t.Rows() {
		if r.Cluster.ID == id {
			return i
		}
	}
	return -1
}
