package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/clustermap/pkg/cluster"
)

func staticLoad(p cluster.Analytics) loadFunc {
	return func(context.Context) (cluster.Analytics, error) { return p, nil }
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m BrowseModel, msgs ...tea.Msg) BrowseModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(BrowseModel)
	}
	return m
}

// loaded returns a model that has processed its initial load.
func loaded(t *testing.T) BrowseModel {
	t.Helper()
	m := NewBrowseModel(context.Background(), "sample", 0, staticLoad(samplePayload()))
	msg := m.Init()()
	return send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30}, msg)
}

func TestBrowseLoads(t *testing.T) {
	m := loaded(t)
	if m.ex.LevelMap() == nil || m.ex.LevelMap().Depth() != 2 {
		t.Fatal("payload not loaded")
	}
	out := m.View()
	for _, want := range []string{"sample", "Coding", "Cooking", "level 0/1"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(out, "Rust") {
		t.Error("collapsed child rendered in tree")
	}
}

func TestBrowseTreeKeys(t *testing.T) {
	m := loaded(t)

	m = send(t, m, key("down"))
	if id, _ := m.ex.Cursor().Hovered(); id != "d" {
		t.Errorf("hovered = %q, want d", id)
	}

	m = send(t, m, key("k"), key("enter"))
	if !m.ex.Tree().IsExpanded("a") {
		t.Fatal("enter did not expand a")
	}
	if len(m.ex.Tree().Rows()) != 4 {
		t.Errorf("rows = %d", len(m.ex.Tree().Rows()))
	}

	m = send(t, m, key("j"), key("s"))
	if id, _ := m.ex.Cursor().Selected(); id != "b" {
		t.Errorf("selected = %q, want b", id)
	}
	if m.ex.PointMap().Level() != 1 {
		t.Errorf("point map level = %d, want 1", m.ex.PointMap().Level())
	}

	m = send(t, m, key("c"))
	if len(m.ex.Tree().Rows()) != 2 {
		t.Error("collapse all kept children")
	}
}

func TestBrowseMapSelectRevealsTree(t *testing.T) {
	m := loaded(t)
	m = send(t, m, key("tab"), key("]"))
	if m.ex.PointMap().Level() != 1 {
		t.Fatalf("level = %d", m.ex.PointMap().Level())
	}

	m = send(t, m, key("right"))
	if id, _ := m.ex.Cursor().Hovered(); id != "c" {
		t.Errorf("hovered = %q, want c", id)
	}

	m = send(t, m, key("enter"))
	if id, _ := m.ex.Cursor().Selected(); id != "c" {
		t.Errorf("selected = %q", id)
	}
	if !m.ex.Tree().IsExpanded("a") {
		t.Error("selecting on the map did not reveal the tree row")
	}
	if m.treeRow != m.ex.Tree().RowIndex("c") {
		t.Errorf("treeRow = %d", m.treeRow)
	}

	m = send(t, m, key("esc"))
	if _, ok := m.ex.Cursor().Hovered(); ok {
		t.Error("esc kept the hover")
	}
}

func TestBrowseIgnoresStaleLoad(t *testing.T) {
	m := loaded(t)

	older := cluster.Analytics{Clusters: []cluster.Cluster{{ID: "old", Name: "Old"}}}
	newer := cluster.Analytics{Clusters: []cluster.Cluster{{ID: "new", Name: "New"}}}

	next, _ := m.Update(key("r"))
	m = next.(BrowseModel)
	slowGen := m.gen
	next, _ = m.Update(key("r"))
	m = next.(BrowseModel)

	m = send(t, m,
		payloadMsg{gen: m.gen, payload: newer},
		payloadMsg{gen: slowGen, payload: older},
	)
	if _, ok := m.ex.LevelMap().Cluster("new"); !ok {
		t.Error("stale load replaced the newer payload")
	}
}

func TestBrowseLoadError(t *testing.T) {
	m := NewBrowseModel(context.Background(), "broken", 0, func(context.Context) (cluster.Analytics, error) {
		return cluster.Analytics{}, errors.New("boom")
	})
	m = send(t, m, m.Init()())
	if !strings.Contains(m.View(), "boom") {
		t.Errorf("view does not show error:\n%s", m.View())
	}
}

func TestBrowseDetail(t *testing.T) {
	m := loaded(t)
	if !strings.Contains(m.View(), "Hover or select") {
		t.Error("missing empty detail hint")
	}
	m = send(t, m, key("s"))
	out := m.View()
	if !strings.Contains(out, "Programming help") || !strings.Contains(out, "75.0% of level") {
		t.Errorf("detail missing for selection:\n%s", out)
	}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion}
}

func TestBrowseMouseHover(t *testing.T) {
	// 100×30: the tree pane spans columns 1-40 with rows from line 3, the
	// map grid is 56×21 starting at column 43, line 4.
	m := loaded(t)

	tests := []struct {
		name string
		msg  tea.MouseMsg
		want string
	}{
		{"map point", motion(43, 24), "a"},
		{"map empty space", motion(70, 14), ""},
		{"tree row", motion(5, 4), "d"},
		{"below tree rows", motion(5, 20), ""},
		{"map corner", motion(98, 4), "d"},
		{"outside both panes", motion(0, 0), ""},
	}
	for _, tt := range tests {
		m = send(t, m, tt.msg)
		got, _ := m.ex.Cursor().Hovered()
		if got != tt.want {
			t.Errorf("%s: hovered = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestBrowseMouseSelect(t *testing.T) {
	m := loaded(t)

	m = send(t, m, tea.MouseMsg{X: 98, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if id, _ := m.ex.Cursor().Selected(); id != "d" {
		t.Errorf("map click selected %q, want d", id)
	}
	if m.focus != paneMap {
		t.Error("map click did not focus the map")
	}

	m = send(t, m, tea.MouseMsg{X: 5, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if id, _ := m.ex.Cursor().Selected(); id != "a" {
		t.Errorf("tree click selected %q, want a", id)
	}
	if m.focus != paneTree || m.treeRow != 0 {
		t.Errorf("focus = %v, treeRow = %d", m.focus, m.treeRow)
	}

	m = send(t, m, tea.MouseMsg{X: 70, Y: 14, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if id, _ := m.ex.Cursor().Selected(); id != "a" {
		t.Errorf("click on empty space changed selection to %q", id)
	}
}

func TestBrowseEmptyPayloadCaption(t *testing.T) {
	m := NewBrowseModel(context.Background(), "empty", 0, staticLoad(cluster.Analytics{}))
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30}, m.Init()())
	out := m.View()
	if strings.Contains(out, "/-1") || !strings.Contains(out, "no levels") {
		t.Errorf("caption for empty payload:\n%s", out)
	}
}

func TestBrowseViewShowsExcluded(t *testing.T) {
	p := samplePayload()
	p.Clusters = append(p.Clusters, cluster.Cluster{ID: "x", Name: "Orphan", ParentID: cluster.ParentRef("missing")})
	m := NewBrowseModel(context.Background(), "sample", 0, staticLoad(p))
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30}, m.Init()())
	if !strings.Contains(m.View(), "1 excluded") {
		t.Errorf("view missing excluded count:\n%s", m.View())
	}
}
