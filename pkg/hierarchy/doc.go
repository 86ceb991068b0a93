// Package hierarchy rebuilds the multi-level cluster tree from a flat list of
// clusters linked only by parent references.
//
// # Level Maps
//
// [Build] partitions clusters into depths: roots (nil parent) are depth 0 and
// every other reachable cluster sits one level below its parent. The result
// is a [LevelMap], built once per analytics payload and never mutated; the
// tree view and the point-map view both read the same instance.
//
// Clusters are stored in an arena addressed by id and the parent links stay
// ids. A parent → children index is built once, so construction is O(N log N)
// for N clusters while producing exactly the ordering of the naive
// "filter the whole list once per depth" approach: within a level, clusters
// keep their relative input order.
//
// # Malformed Input
//
// Dangling parent references and cycles are never errors. Clusters that are
// not reachable from a root appear in no level and are reported through
// [LevelMap.Excluded]; callers should log the count as a data-quality warning.
// Build always terminates: every cluster is placed at most once and expansion
// stops at the first level that adds nothing.
//
// # Level Shares
//
// [PercentageOfLevel] and [LevelShares] express a cluster's count as a share
// of its level's total, for display only.
package hierarchy
