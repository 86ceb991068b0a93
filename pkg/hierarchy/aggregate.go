package hierarchy

import "github.com/matzehuels/clustermap/pkg/cluster"

// PercentageOfLevel returns c's count as a percentage of the total count of
// level. It returns 0 when the level total is 0.
//
// c does not need to be a member of level; callers normally pass the level
// the cluster was placed in.
func PercentageOfLevel(c cluster.Cluster, level []cluster.Cluster) float64 {
	return share(c.Count, cluster.TotalCount(level))
}

// LevelShares returns [PercentageOfLevel] for every cluster of level, in order.
// For a level with a positive total the shares sum to 100.
func LevelShares(level []cluster.Cluster) []float64 {
	total := cluster.TotalCount(level)
	out := make([]float64, len(level))
	for i, c := range level {
		out[i] = share(c.Count, total)
	}
	return out
}

// ShareOf looks up id in m and returns its share of its own level. It uses
// the level totals recorded by [Build], so it does not walk the level.
func ShareOf(m *LevelMap, id string) (float64, bool) {
	d, ok := m.DepthOf(id)
	if !ok {
		return 0, false
	}
	c, _ := m.Cluster(id)
	return share(c.Count, m.LevelTotal(d)), true
}

func share(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// LevelSummary describes one level of a [LevelMap].
type LevelSummary struct {
	Depth      int    `json:"depth"`
	Clusters   int    `json:"clusters"`
	TotalCount int    `json:"total_count"`
	Largest    string `json:"largest,omitempty"` // id of the cluster with the highest count
	Parents    int    `json:"parents"`           // clusters in this level with at least one child
}

// Summarize returns one summary per level, root level first.
func Summarize(m *LevelMap) []LevelSummary {
	out := make([]LevelSummary, m.Depth())
	for d := range out {
		level := m.Level(d)
		s := LevelSummary{Depth: d, Clusters: len(level), TotalCount: cluster.TotalCount(level)}
		best := -1
		for _, c := range level {
			if c.Count > best {
				best = c.Count
				s.Largest = c.ID
			}
			if m.HasChildren(c.ID) {
				s.Parents++
			}
		}
		out[d] = s
	}
	return out
}
