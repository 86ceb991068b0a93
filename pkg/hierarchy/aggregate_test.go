package hierarchy

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/clustermap/pkg/cluster"
)

func counted(id, parent string, count int) cluster.Cluster {
	c := node(id, parent)
	c.Count = count
	return c
}

func TestPercentageOfLevel(t *testing.T) {
	level := []cluster.Cluster{counted("a", "", 30), counted("b", "", 10), counted("c", "", 0)}
	want := []float64{75, 25, 0}

	for i, c := range level {
		if got := PercentageOfLevel(c, level); math.Abs(got-want[i]) > 1e-9 {
			t.Errorf("PercentageOfLevel(%s) = %v, want %v", c.ID, got, want[i])
		}
	}

	shares := LevelShares(level)
	for i := range want {
		if math.Abs(shares[i]-want[i]) > 1e-9 {
			t.Errorf("LevelShares[%d] = %v, want %v", i, shares[i], want[i])
		}
	}
}

func TestPercentageOfLevelZeroTotal(t *testing.T) {
	level := []cluster.Cluster{counted("a", "", 0), counted("b", "", 0)}
	for _, c := range level {
		got := PercentageOfLevel(c, level)
		if got != 0 || math.IsNaN(got) {
			t.Errorf("PercentageOfLevel = %v, want 0", got)
		}
	}
	if got := PercentageOfLevel(counted("x", "", 5), nil); got != 0 {
		t.Errorf("empty level = %v, want 0", got)
	}
}

func TestLevelSharesSumTo100(t *testing.T) {
	level := []cluster.Cluster{
		counted("a", "", 1), counted("b", "", 2), counted("c", "", 3), counted("d", "", 7), counted("e", "", 11),
	}
	var sum float64
	for _, s := range LevelShares(level) {
		sum += s
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("sum = %v, want 100", sum)
	}
}

func TestShareOf(t *testing.T) {
	m := Build([]cluster.Cluster{
		counted("A", "", 10), counted("B", "A", 4), counted("C", "A", 12),
	})
	got, ok := ShareOf(m, "C")
	if !ok || math.Abs(got-75) > 1e-9 {
		t.Errorf("ShareOf(C) = %v, %v; want 75", got, ok)
	}
	if _, ok := ShareOf(m, "missing"); ok {
		t.Error("ShareOf(missing) should report false")
	}
}

func TestSummarize(t *testing.T) {
	m := Build([]cluster.Cluster{
		counted("A", "", 10), counted("Z", "", 30), counted("B", "A", 4), counted("C", "A", 12),
	})
	sums := Summarize(m)
	if len(sums) != 2 {
		t.Fatalf("len = %d, want 2", len(sums))
	}
	if sums[0].Clusters != 2 || sums[0].TotalCount != 40 || sums[0].Largest != "Z" || sums[0].Parents != 1 {
		t.Errorf("level 0 = %+v", sums[0])
	}
	if sums[1].Largest != "C" || sums[1].Parents != 0 {
		t.Errorf("level 1 = %+v", sums[1])
	}
}

func TestShareOfMatchesLevelScan(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	cs := randomForest(r, 300)
	for i := range cs {
		cs[i].Count = r.IntN(50)
	}
	m := Build(cs)

	for d := range m.Depth() {
		level := m.Level(d)
		if got, want := m.LevelTotal(d), cluster.TotalCount(level); got != want {
			t.Errorf("LevelTotal(%d) = %d, want %d", d, got, want)
		}
		for _, c := range level {
			got, ok := ShareOf(m, c.ID)
			if want := PercentageOfLevel(c, level); !ok || got != want {
				t.Errorf("ShareOf(%s) = %v, %v; want %v", c.ID, got, ok, want)
			}
		}
	}
	if m.LevelTotal(-1) != 0 || m.LevelTotal(m.Depth()) != 0 {
		t.Error("out-of-range LevelTotal should be 0")
	}
}
