package hierarchy

import (
	"slices"

	"github.com/matzehuels/clustermap/pkg/cluster"
)

// Build partitions clusters into levels by breadth-first expansion from the
// roots.
//
// Level 0 holds every cluster with a nil parent. Level d+1 holds every cluster
// whose parent is in level d. Within a level clusters keep their relative
// input order. Expansion stops at the first level that adds no cluster.
//
// Build never fails. Clusters that cannot be reached from a root, and any
// cluster repeating an earlier id, are left out and listed by
// [LevelMap.Excluded]. The input slice is not modified.
func Build(clusters []cluster.Cluster) *LevelMap {
	n := len(clusters)

	// First occurrence of each id wins.
	first := make(map[string]int, n)
	var dupes []int
	for i, c := range clusters {
		if _, ok := first[c.ID]; ok {
			dupes = append(dupes, i)
			continue
		}
		first[c.ID] = i
	}

	// parent id -> input indices, ascending.
	index := make(map[string][]int)
	var current []int
	for i, c := range clusters {
		if first[c.ID] != i {
			continue
		}
		if c.IsRoot() {
			current = append(current, i)
			continue
		}
		index[c.Parent()] = append(index[c.Parent()], i)
	}

	m := &LevelMap{
		byID:     make(map[string]int, n),
		depth:    make(map[string]int, n),
		children: make(map[string][]int),
	}
	placed := make([]bool, n)

	for d := 0; len(current) > 0 && d <= n; d++ {
		level := make([]int, 0, len(current))
		total := 0
		for _, i := range current {
			if placed[i] {
				continue
			}
			placed[i] = true
			c := clusters[i]
			m.byID[c.ID] = len(m.arena)
			m.depth[c.ID] = d
			level = append(level, len(m.arena))
			m.arena = append(m.arena, c)
			total += c.Count
		}
		if len(level) == 0 {
			break
		}
		m.levels = append(m.levels, level)
		m.totals = append(m.totals, total)

		var next []int
		for _, a := range level {
			next = append(next, index[m.arena[a].ID]...)
		}
		slices.Sort(next)
		current = next
	}

	for _, lvl := range m.levels[min(1, len(m.levels)):] {
		for _, a := range lvl {
			p := m.arena[a].Parent()
			m.children[p] = append(m.children[p], a)
		}
	}

	excludedIdx := dupes
	for i := range clusters {
		if !placed[i] && first[clusters[i].ID] == i {
			excludedIdx = append(excludedIdx, i)
		}
	}
	slices.Sort(excludedIdx)
	m.excluded = make([]string, len(excludedIdx))
	for k, i := range excludedIdx {
		m.excluded[k] = clusters[i].ID
	}

	return m
}
