package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
)

func testMap() *hierarchy.LevelMap {
	return hierarchy.Build([]cluster.Cluster{
		{ID: "a", Name: "Programming", Count: 3},
		{ID: "b", Name: "Go", ParentID: cluster.ParentRef("a"), Count: 1},
		{ID: "c", Name: "Rust", ParentID: cluster.ParentRef("a"), Count: 3},
		{ID: "x", Name: "Orphan", ParentID: cluster.ParentRef("missing"), Count: 9},
	})
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testMap(), Options{})

	for _, want := range []string{
		"digraph G",
		`subgraph level_0`,
		`subgraph level_1`,
		`"a" [label="Programming"`,
		`"a" -> "b";`,
		`"a" -> "c";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q", want)
		}
	}
	if strings.Contains(dot, `"x"`) {
		t.Error("excluded clusters must not be drawn")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testMap(), Options{Detailed: true, Highlight: "c"})
	if !strings.Contains(dot, `Rust\n75.0% • 3`) {
		t.Errorf("detailed label missing share:\n%s", dot)
	}
	if !strings.Contains(dot, "penwidth=3") {
		t.Error("highlighted cluster should be outlined")
	}
}

func TestToDOTMaxDepth(t *testing.T) {
	dot := ToDOT(testMap(), Options{MaxDepth: 1})
	if strings.Contains(dot, "level_1") || strings.Contains(dot, "->") {
		t.Errorf("depth-limited output drew level 1:\n%s", dot)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo wörld", 6); got != "héllo…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 62.00 116.00" width="62" height="116"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
}
