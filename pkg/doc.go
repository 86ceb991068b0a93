// Package pkg holds the clustermap libraries.
//
// # Overview
//
// Clustermap takes chat conversations, has an external analysis service
// group them into a hierarchy of topic clusters, and lets you explore that
// hierarchy level by level. The libraries are organized as:
//
//  1. Data: [cluster] (payload types and validation), [conversation]
//     (chat exports and analysis requests)
//  2. Domain: [hierarchy] (level maps and shares), [geometry] (footprints),
//     [view] (tree, point map and shared cursor state)
//  3. Infrastructure: [analysis] (service client), [cache], [snapshot],
//     [config], [httputil], [observability], [errors]
//  4. Orchestration: [pipeline] (analyse → layout → render) and [render]
//
// # Data flow
//
//	Chat exports
//	     ↓
//	[conversation] (normalize, validate)
//	     ↓
//	[analysis] (POST /api/analyse, cached)
//	     ↓
//	[cluster].Analytics payload  →  [snapshot] store
//	     ↓
//	[hierarchy].Build (levels by breadth-first expansion)
//	     ↓
//	[view] / [render] / HTTP API
//
// # Quick start
//
//	payload, _ := cluster.ReadFile("payload.json")
//	lm := hierarchy.Build(payload.Clusters)
//	for d, level := range lm.Levels() {
//	    for i, share := range hierarchy.LevelShares(level) {
//	        fmt.Printf("%d %s %.1f%%\n", d, level[i].Name, share)
//	    }
//	}
package pkg
