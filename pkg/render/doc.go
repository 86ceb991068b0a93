// Package render turns a cluster hierarchy into pictures.
//
// Two renderers are provided:
//
//   - [nodelink]: the hierarchy as a top-down Graphviz diagram, one rank per
//     level, labels carrying each cluster's share of its level
//   - [bubble]: one level of the point map as SVG, parent bubbles sized by
//     the footprint of their children
//
// Both produce self-contained SVG bytes suitable for writing to disk or
// serving over HTTP.
package render
