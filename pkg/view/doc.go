// Package view holds the interactive state behind the cluster explorer: the
// expandable tree, the per-level point map, and the cursor shared by both.
//
// # Overview
//
// The two views never talk to each other. Each one reports what the user did
// as an [Intent] to the [Explorer], which owns the single [Cursor] and
// applies the change. Listeners registered on the cursor see every hover and
// selection change exactly once, so both views redraw from the same source.
//
//	exp := view.NewExplorer(view.Options{ListHeight: 20})
//	exp.Load(1, payload)
//	exp.Dispatch(view.Intent{Kind: view.HoverMap, ID: "c12"})
//	rows := exp.Tree().Rows()
//
// # Expansion
//
// [Tree] tracks expansion per cluster id. Toggling a node changes only that
// node; its children keep their own state and reappear unchanged when the
// parent is expanded again.
//
// # Scrolling
//
// When a hover originates from the point map, the explorer brings the
// matching tree row into view with [Viewport.ScrollIntoView]. A row that is
// already visible never scrolls.
//
// None of the types in this package are safe for concurrent use; the TUI
// drives them from its single update loop.
package view
