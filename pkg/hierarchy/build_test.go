package hierarchy

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/matzehuels/clustermap/pkg/cluster"
)

func node(id, parent string) cluster.Cluster {
	return cluster.Cluster{ID: id, Name: id, ParentID: cluster.ParentRef(parent)}
}

func ids(cs []cluster.Cluster) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

// naiveLevels re-scans the whole input once per depth.
func naiveLevels(cs []cluster.Cluster) [][]string {
	var levels [][]string
	var current []string
	for _, c := range cs {
		if c.IsRoot() {
			current = append(current, c.ID)
		}
	}
	seen := map[string]bool{}
	for len(current) > 0 {
		var fresh []string
		for _, id := range current {
			if !seen[id] {
				seen[id] = true
				fresh = append(fresh, id)
			}
		}
		if len(fresh) == 0 {
			break
		}
		levels = append(levels, fresh)
		var next []string
		for _, c := range cs {
			if !c.IsRoot() && slices.Contains(fresh, c.Parent()) {
				next = append(next, c.ID)
			}
		}
		current = next
	}
	return levels
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		input    []cluster.Cluster
		want     [][]string
		excluded []string
	}{
		{
			name:  "Empty",
			input: nil,
		},
		{
			name:  "SingleRoot",
			input: []cluster.Cluster{node("A", "")},
			want:  [][]string{{"A"}},
		},
		{
			name: "ThreeLevels",
			input: []cluster.Cluster{
				node("A", ""), node("B", "A"), node("C", "A"), node("D", "B"),
			},
			want: [][]string{{"A"}, {"B", "C"}, {"D"}},
		},
		{
			name: "InputOrderWithinLevel",
			input: []cluster.Cluster{
				node("x2", "r2"), node("r1", ""), node("x1", "r1"), node("r2", ""), node("x3", "r1"),
			},
			want: [][]string{{"r1", "r2"}, {"x2", "x1", "x3"}},
		},
		{
			name: "ChildBeforeParent",
			input: []cluster.Cluster{
				node("leaf", "mid"), node("mid", "root"), node("root", ""),
			},
			want: [][]string{{"root"}, {"mid"}, {"leaf"}},
		},
		{
			name: "DanglingParent",
			input: []cluster.Cluster{
				node("A", ""), node("B", "ghost"), node("C", "B"), node("D", "A"),
			},
			want:     [][]string{{"A"}, {"D"}},
			excluded: []string{"B", "C"},
		},
		{
			name: "SelfParent",
			input: []cluster.Cluster{
				node("A", ""), node("S", "S"),
			},
			want:     [][]string{{"A"}},
			excluded: []string{"S"},
		},
		{
			name: "DuplicateID",
			input: []cluster.Cluster{
				node("A", ""), node("B", "A"), node("A", ""),
			},
			want:     [][]string{{"A"}, {"B"}},
			excluded: []string{"A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Build(tt.input)
			if m.Depth() != len(tt.want) {
				t.Fatalf("Depth() = %d, want %d", m.Depth(), len(tt.want))
			}
			for d, want := range tt.want {
				if got := ids(m.Level(d)); !slices.Equal(got, want) {
					t.Errorf("level %d = %v, want %v", d, got, want)
				}
			}
			if got := m.Excluded(); !slices.Equal(got, tt.excluded) && (len(got) != 0 || len(tt.excluded) != 0) {
				t.Errorf("Excluded() = %v, want %v", got, tt.excluded)
			}
			if m.ExcludedCount() != len(tt.excluded) {
				t.Errorf("ExcludedCount() = %d, want %d", m.ExcludedCount(), len(tt.excluded))
			}
		})
	}
}

func TestBuildCycleTerminates(t *testing.T) {
	input := []cluster.Cluster{
		node("root", ""),
		node("c1", "c3"),
		node("c2", "c1"),
		node("c3", "c2"),
		node("tail", "c2"),
	}

	done := make(chan *LevelMap, 1)
	go func() { done <- Build(input) }()

	select {
	case m := <-done:
		if m.Depth() != 1 || m.Len() != 1 {
			t.Errorf("Depth() = %d Len() = %d, want only the root", m.Depth(), m.Len())
		}
		want := []string{"c1", "c2", "c3", "tail"}
		if got := m.Excluded(); !slices.Equal(got, want) {
			t.Errorf("Excluded() = %v, want %v", got, want)
		}
		for _, id := range want {
			if _, ok := m.DepthOf(id); ok {
				t.Errorf("%s should not be placed", id)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Build did not terminate on a cyclic hierarchy")
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	input := []cluster.Cluster{node("b", "a"), node("a", "")}
	before := ids(input)
	Build(input)
	if !slices.Equal(ids(input), before) {
		t.Errorf("input reordered: %v", ids(input))
	}
}

func TestChildren(t *testing.T) {
	m := Build([]cluster.Cluster{
		node("A", ""), node("B", "A"), node("Z", ""), node("C", "A"), node("D", "B"), node("E", "Z"),
	})

	if got := ids(m.Children("A")); !slices.Equal(got, []string{"B", "C"}) {
		t.Errorf("Children(A) = %v", got)
	}
	if got := m.ChildIDs("Z"); !slices.Equal(got, []string{"E"}) {
		t.Errorf("ChildIDs(Z) = %v", got)
	}
	if m.HasChildren("C") {
		t.Error("C is a leaf")
	}
	if m.Children("missing") != nil {
		t.Error("unknown id should have no children")
	}
	if got := m.Ancestors("D"); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Ancestors(D) = %v", got)
	}
	if got := ids(m.Roots()); !slices.Equal(got, []string{"A", "Z"}) {
		t.Errorf("Roots() = %v", got)
	}
}

func TestLevelReturnsCopy(t *testing.T) {
	m := Build([]cluster.Cluster{node("A", "")})
	lvl := m.Level(0)
	lvl[0].Name = "mutated"
	if c, _ := m.Cluster("A"); c.Name != "A" {
		t.Error("Level should not expose internal storage")
	}
	if m.Level(5) != nil || m.Level(-1) != nil {
		t.Error("out-of-range level should be nil")
	}
}

func TestLevelMismatches(t *testing.T) {
	a := node("A", "")
	b := node("B", "A")
	b.Level = 1
	c := node("C", "B")
	c.Level = 7
	m := Build([]cluster.Cluster{a, b, c})
	if got := m.LevelMismatches(); !slices.Equal(got, []string{"C"}) {
		t.Errorf("LevelMismatches() = %v, want [C]", got)
	}
	if d, _ := m.DepthOf("C"); d != 2 {
		t.Errorf("computed depth of C = %d, want 2 regardless of declared level", d)
	}
}

func TestNilLevelMap(t *testing.T) {
	var m *LevelMap
	if m.Depth() != 0 || m.Len() != 0 || m.ExcludedCount() != 0 {
		t.Error("nil map should be empty")
	}
	if _, ok := m.Cluster("a"); ok {
		t.Error("nil map has no clusters")
	}
	if m.Children("a") != nil || m.Levels() != nil {
		t.Error("nil map has no levels")
	}
}

// randomForest builds n clusters where some parents dangle and some form cycles.
func randomForest(r *rand.Rand, n int) []cluster.Cluster {
	out := make([]cluster.Cluster, n)
	for i := range out {
		id := "n" + strconv.Itoa(i)
		switch k := r.IntN(10); {
		case k < 2:
			out[i] = node(id, "")
		case k < 3:
			out[i] = node(id, "ghost"+strconv.Itoa(i))
		default:
			out[i] = node(id, "n"+strconv.Itoa(r.IntN(n)))
		}
	}
	return out
}

func reachable(cs []cluster.Cluster) map[string]bool {
	parent := map[string]string{}
	root := map[string]bool{}
	for _, c := range cs {
		parent[c.ID] = c.Parent()
		root[c.ID] = c.IsRoot()
	}
	out := map[string]bool{}
	for _, c := range cs {
		id := c.ID
		for steps := 0; steps <= len(cs); steps++ {
			if root[id] {
				out[c.ID] = true
				break
			}
			p, ok := parent[id]
			if !ok || p == "" {
				break
			}
			if _, exists := parent[p]; !exists {
				break
			}
			id = p
		}
	}
	return out
}

func TestBuildProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 42))
	for iter := 0; iter < 200; iter++ {
		input := randomForest(r, 1+r.IntN(60))
		m := Build(input)

		// Exactly the reachable set is placed, each cluster once.
		want := reachable(input)
		seen := map[string]int{}
		for d, lvl := range m.Levels() {
			for _, c := range lvl {
				seen[c.ID]++
				if got, _ := m.DepthOf(c.ID); got != d {
					t.Fatalf("iter %d: DepthOf(%s) = %d, listed at %d", iter, c.ID, got, d)
				}
				// depth(child) == depth(parent) + 1
				if !c.IsRoot() {
					pd, ok := m.DepthOf(c.Parent())
					if !ok || pd+1 != d {
						t.Fatalf("iter %d: %s at %d, parent %s at %d (%v)", iter, c.ID, d, c.Parent(), pd, ok)
					}
				}
			}
		}
		if len(seen) != len(want) {
			t.Fatalf("iter %d: placed %d clusters, want %d", iter, len(seen), len(want))
		}
		for id, n := range seen {
			if n != 1 || !want[id] {
				t.Fatalf("iter %d: %s placed %d times (reachable=%v)", iter, id, n, want[id])
			}
		}
		if m.Len()+m.ExcludedCount() != len(input) {
			t.Fatalf("iter %d: placed %d + excluded %d != %d", iter, m.Len(), m.ExcludedCount(), len(input))
		}
		if m.Depth() > len(input) {
			t.Fatalf("iter %d: depth %d exceeds input size %d", iter, m.Depth(), len(input))
		}

		// Same ordering as the naive repeated filter.
		naive := naiveLevels(input)
		if len(naive) != m.Depth() {
			t.Fatalf("iter %d: naive depth %d, got %d", iter, len(naive), m.Depth())
		}
		for d := range naive {
			if got := ids(m.Level(d)); !slices.Equal(got, naive[d]) {
				t.Fatalf("iter %d level %d: got %v, naive %v", iter, d, got, naive[d])
			}
		}
	}
}
