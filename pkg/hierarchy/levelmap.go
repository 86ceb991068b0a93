package hierarchy

import (
	"slices"

	"github.com/matzehuels/clustermap/pkg/cluster"
)

// LevelMap is the depth-indexed partition of a cluster forest.
// The zero value is an empty map. A LevelMap is immutable once built and safe
// for concurrent readers.
type LevelMap struct {
	arena    []cluster.Cluster // placed clusters in input order
	levels   [][]int           // depth -> arena indices, input order
	totals   []int             // depth -> sum of counts
	byID     map[string]int    // id -> arena index
	depth    map[string]int    // id -> computed depth
	children map[string][]int  // parent id -> arena indices, input order
	excluded []string
}

// Depth returns the number of levels. An empty map has depth 0.
func (m *LevelMap) Depth() int {
	if m == nil {
		return 0
	}
	return len(m.levels)
}

// LevelTotal returns the summed count of the clusters at depth d, or 0 for
// an out-of-range depth.
func (m *LevelMap) LevelTotal(d int) int {
	if m == nil || d < 0 || d >= len(m.totals) {
		return 0
	}
	return m.totals[d]
}

// Len returns the number of clusters placed in some level.
func (m *LevelMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.arena)
}

// Level returns a copy of the clusters at depth d in input order.
// Out-of-range depths return nil.
func (m *LevelMap) Level(d int) []cluster.Cluster {
	if m == nil || d < 0 || d >= len(m.levels) {
		return nil
	}
	return m.collect(m.levels[d])
}

// Levels returns every level, root level first.
func (m *LevelMap) Levels() [][]cluster.Cluster {
	if m == nil {
		return nil
	}
	out := make([][]cluster.Cluster, len(m.levels))
	for d := range m.levels {
		out[d] = m.collect(m.levels[d])
	}
	return out
}

// Roots returns the depth-0 clusters.
func (m *LevelMap) Roots() []cluster.Cluster { return m.Level(0) }

// Cluster looks up a placed cluster by id.
func (m *LevelMap) Cluster(id string) (cluster.Cluster, bool) {
	if m == nil {
		return cluster.Cluster{}, false
	}
	i, ok := m.byID[id]
	if !ok {
		return cluster.Cluster{}, false
	}
	return m.arena[i], true
}

// DepthOf returns the computed depth of a placed cluster.
func (m *LevelMap) DepthOf(id string) (int, bool) {
	if m == nil {
		return 0, false
	}
	d, ok := m.depth[id]
	return d, ok
}

// Children returns the next-level clusters whose parent is id, in input order.
func (m *LevelMap) Children(id string) []cluster.Cluster {
	if m == nil {
		return nil
	}
	return m.collect(m.children[id])
}

// ChildIDs returns the ids of id's children in input order.
func (m *LevelMap) ChildIDs(id string) []string {
	if m == nil {
		return nil
	}
	idx := m.children[id]
	ids := make([]string, len(idx))
	for i, j := range idx {
		ids[i] = m.arena[j].ID
	}
	return ids
}

// HasChildren reports whether id has at least one placed child.
func (m *LevelMap) HasChildren(id string) bool {
	return m != nil && len(m.children[id]) > 0
}

// Excluded returns the ids of clusters that are unreachable from any root
// (dangling parent, cycle, descendant of either) or that repeat an earlier
// id, in input order.
func (m *LevelMap) Excluded() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.excluded)
}

// ExcludedCount is the number of input clusters missing from every level.
func (m *LevelMap) ExcludedCount() int {
	if m == nil {
		return 0
	}
	return len(m.excluded)
}

// LevelMismatches returns the ids of placed clusters whose declared Level
// differs from their computed depth. The declared level is advisory, so this
// is purely diagnostic.
func (m *LevelMap) LevelMismatches() []string {
	if m == nil {
		return nil
	}
	var ids []string
	for _, c := range m.arena {
		if c.Level != m.depth[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Ancestors returns the ids on the path from the root down to id's parent.
func (m *LevelMap) Ancestors(id string) []string {
	c, ok := m.Cluster(id)
	if !ok {
		return nil
	}
	var path []string
	for !c.IsRoot() {
		parent, ok := m.Cluster(c.Parent())
		if !ok {
			break
		}
		path = append(path, parent.ID)
		c = parent
	}
	slices.Reverse(path)
	return path
}

func (m *LevelMap) collect(idx []int) []cluster.Cluster {
	if len(idx) == 0 {
		return nil
	}
	out := make([]cluster.Cluster, len(idx))
	for i, j := range idx {
		out[i] = m.arena[j]
	}
	return out
}
