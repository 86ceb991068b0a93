package view

import (
	"fmt"
	"testing"

	"github.com/matzehuels/clustermap/pkg/cluster"
)

func payload(cs []cluster.Cluster) *cluster.Analytics {
	return &cluster.Analytics{Clusters: cs}
}

func TestExplorerLoadDropsStale(t *testing.T) {
	e := NewExplorer(Options{ListHeight: 5})
	newer := payload(sample())
	older := payload(sample()[:1])

	if !e.Load(2, newer) {
		t.Fatal("first load rejected")
	}
	if e.Load(1, older) {
		t.Error("stale load accepted")
	}
	if e.Payload() != newer || e.LevelMap().Len() != 7 {
		t.Error("stale payload replaced the newer one")
	}
	if !e.Load(2, older) {
		t.Error("same generation should reload")
	}
}

func TestExplorerLoadResets(t *testing.T) {
	e := NewExplorer(Options{ListHeight: 5})
	e.Load(1, payload(sample()))
	e.Dispatch(Intent{Kind: ToggleTree, ID: "A"})
	e.Dispatch(Intent{Kind: SelectTree, ID: "B"})
	e.PointMap().Down()

	e.Load(2, payload(sample()))
	if e.Tree().IsExpanded("A") {
		t.Error("expansion survived a load")
	}
	if _, ok := e.Cursor().Selected(); ok {
		t.Error("selection survived a load")
	}
	if e.PointMap().Level() != 0 {
		t.Error("point map level survived a load")
	}
}

func TestExplorerHoverScrollsTree(t *testing.T) {
	// 30 roots and a 10-row window.
	var cs []cluster.Cluster
	for i := range 30 {
		cs = append(cs, c(fmt.Sprintf("r%02d", i), "", 1, float64(i), 0))
	}
	e := NewExplorer(Options{ListHeight: 10})
	e.Load(1, payload(cs))

	e.Dispatch(Intent{Kind: HoverMap, ID: "r05"})
	if e.List().Offset != 0 {
		t.Errorf("visible row scrolled to %d", e.List().Offset)
	}

	e.Dispatch(Intent{Kind: HoverMap, ID: "r25"})
	if got := e.List().Offset; got != 20 {
		t.Errorf("offset = %d, want 20", got)
	}

	// Hovering the same cluster again is not a change and must not scroll.
	e.List().Offset = 0
	e.Dispatch(Intent{Kind: HoverMap, ID: "r25"})
	if e.List().Offset != 0 {
		t.Error("repeated hover scrolled the list")
	}

	e.Dispatch(Intent{Kind: Leave, ID: "r25"})
	e.Dispatch(Intent{Kind: HoverTree, ID: "r15"})
	if got := e.List().Offset; got != 10 {
		t.Errorf("offset = %d, want 10", got)
	}
}

func TestExplorerSelection(t *testing.T) {
	e := NewExplorer(Options{})
	e.Load(1, payload(sample()))
	e.Dispatch(Intent{Kind: SelectMap, ID: "G"})
	got, ok := e.Selected()
	if !ok || got.ID != "G" {
		t.Errorf("Selected = %+v, %v", got, ok)
	}
}

func TestIntentKindString(t *testing.T) {
	if HoverMap.String() != "hover-map" || IntentKind(42).String() != "unknown" {
		t.Error("unexpected intent names")
	}
}
