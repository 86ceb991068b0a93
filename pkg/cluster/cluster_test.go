package cluster

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/clustermap/pkg/errors"
)

const samplePayload = `{
  "cumulative_words": [{"x": "2024-01-01", "y": 120}, {"x": "2024-01-08", "y": 310}],
  "messages_per_chat": [],
  "messages_per_week": [{"x": "2024-01-01", "y": 14}],
  "new_chats_per_week": [],
  "clusters": [
    {"id": "A", "name": "Programming", "description": "code", "chat_ids": ["c1", "c2"], "parent_id": null, "count": 2, "x_coord": 1.5, "y_coord": -2, "level": 0},
    {"id": "B", "name": "Go", "description": "go code", "chat_ids": ["c1"], "parent_id": "A", "count": 1, "x_coord": 1.0, "y_coord": -2.5, "level": 1}
  ]
}`

func TestDecode(t *testing.T) {
	a, err := Decode(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(a.Clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(a.Clusters))
	}
	if !a.Clusters[0].IsRoot() {
		t.Error("A should be a root")
	}
	if got := a.Clusters[1].Parent(); got != "A" {
		t.Errorf("B parent = %q, want A", got)
	}
	if a.Clusters[1].X != 1.0 || a.Clusters[1].Y != -2.5 {
		t.Errorf("B coords = (%v, %v)", a.Clusters[1].X, a.Clusters[1].Y)
	}
	if len(a.CumulativeWords) != 2 || a.CumulativeWords[1].Y != 310 {
		t.Errorf("cumulative_words = %+v", a.CumulativeWords)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"clusters": [`},
		{"missing clusters", `{"cumulative_words": []}`},
		{"empty id", `{"clusters": [{"id": "", "parent_id": null, "count": 1}]}`},
		{"duplicate id", `{"clusters": [{"id": "a", "parent_id": null}, {"id": "a", "parent_id": null}]}`},
		{"negative count", `{"clusters": [{"id": "a", "parent_id": null, "count": -1}]}`},
		{"negative level", `{"clusters": [{"id": "a", "parent_id": null, "level": -2}]}`},
		{"empty parent", `{"clusters": [{"id": "a", "parent_id": ""}]}`},
		{"wrong type", `{"clusters": [{"id": 7}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidPayload) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidPayload)
			}
		})
	}
}

func TestDecodeAllowsDanglingParent(t *testing.T) {
	body := `{"clusters": [{"id": "a", "parent_id": "missing", "count": 3}]}`
	a, err := Decode(strings.NewReader(body))
	if err != nil {
		t.Fatalf("dangling parents are a hierarchy concern, got %v", err)
	}
	if a.Clusters[0].Parent() != "missing" {
		t.Errorf("parent = %q", a.Clusters[0].Parent())
	}
}

func TestDecodeEmptyClusters(t *testing.T) {
	a, err := Decode(strings.NewReader(`{"clusters": []}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(a.Clusters) != 0 {
		t.Errorf("clusters = %d, want 0", len(a.Clusters))
	}
}

func TestValidateNonFinite(t *testing.T) {
	a := Analytics{Clusters: []Cluster{{ID: "a", X: math.Inf(1)}}}
	if err := Validate(a); err == nil {
		t.Error("expected error for infinite coordinate")
	}

	a = Analytics{
		Clusters:        []Cluster{},
		MessagesPerWeek: []DataPoint{{X: "2024-01-01", Y: math.NaN()}},
	}
	if err := Validate(a); err == nil {
		t.Error("expected error for NaN series value")
	}
}

func TestFileRoundTrip(t *testing.T) {
	a, err := Unmarshal([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	path := filepath.Join(t.TempDir(), "payload.json")
	if err := WriteFile(a, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got.Clusters) != len(a.Clusters) {
		t.Fatalf("clusters = %d, want %d", len(got.Clusters), len(a.Clusters))
	}
	if !got.Clusters[0].IsRoot() || got.Clusters[1].Parent() != "A" {
		t.Error("parent references not preserved")
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"parent_id": null`) {
		t.Error("root parent should serialize as null")
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHelpers(t *testing.T) {
	cs := []Cluster{
		{ID: "a", Name: "Alpha", Count: 3, X: 1, Y: 2},
		{ID: "b", Count: 4, X: 3, Y: 4, ParentID: ParentRef("a")},
	}
	if TotalCount(cs) != 7 {
		t.Errorf("TotalCount = %d, want 7", TotalCount(cs))
	}
	xs, ys := Points(cs)
	if xs[1] != 3 || ys[0] != 2 {
		t.Errorf("Points = %v %v", xs, ys)
	}
	if cs[1].DisplayName() != "b" || cs[0].DisplayName() != "Alpha" {
		t.Error("DisplayName fallback")
	}
	if ParentRef("") != nil {
		t.Error("ParentRef(\"\") should be nil")
	}
}
