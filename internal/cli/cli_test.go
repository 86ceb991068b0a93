package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/config"
	"github.com/matzehuels/clustermap/pkg/conversation"
	"github.com/matzehuels/clustermap/pkg/errors"
	"github.com/matzehuels/clustermap/pkg/hierarchy"
)

func samplePayload() cluster.Analytics {
	return cluster.Analytics{Clusters: []cluster.Cluster{
		{ID: "a", Name: "Coding", Description: "Programming help", Count: 6},
		{ID: "b", Name: "Go", ParentID: cluster.ParentRef("a"), Count: 4, X: 1, Y: 1, Level: 1},
		{ID: "c", Name: "Rust", ParentID: cluster.ParentRef("a"), Count: 2, X: 3, Y: 2, Level: 1},
		{ID: "d", Name: "Cooking", Count: 2, X: 5, Y: 5},
	}}
}

// testCLI returns a CLI whose cache and store live in temp directories.
func testCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.Config.Cache = config.Cache{Backend: config.BackendFile, Dir: t.TempDir()}
	c.Config.Store = config.Store{Backend: config.BackendFile, Dir: t.TempDir()}
	return c
}

func TestRootCommandRegistersCommands(t *testing.T) {
	root := testCLI(t).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"import", "analyse", "levels", "tree", "browse", "render", "snapshot", "serve", "cache", "config", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing command %q in %v", want, names)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"dot, json", []string{"dot", "json"}},
		{"svg,,bubble", []string{"svg", "bubble"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		format  string
		want    string
	}{
		{"single explicit", "out.svg", []string{"svg"}, "svg", "out.svg"},
		{"multiple explicit", "out/map.svg", []string{"svg", "dot"}, "dot", "out/map.dot"},
		{"bubble extension", "map", []string{"svg", "bubble"}, "bubble", "map.bubble.svg"},
		{"snapshot ref", "", []string{"json"}, "json", "clustermap.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := outputBase("no-such-snapshot", tt.output, tt.formats)
			if got := outputPath(base, tt.output, tt.format, len(tt.formats)); got != tt.want {
				t.Errorf("outputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCache(t *testing.T) {
	c := testCLI(t)
	ctx := context.Background()

	cc, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := cc.(*cache.FileCache); !ok || fc.Dir() != c.Config.Cache.Dir {
		t.Errorf("file backend gave %T", cc)
	}

	if cc, _ := c.newCache(ctx, true); cc != cache.NewNullCache() {
		t.Errorf("--no-cache gave %T", cc)
	}

	c.Config.Cache.Backend = config.BackendNone
	if cc, _ := c.newCache(ctx, false); cc != cache.NewNullCache() {
		t.Errorf("none backend gave %T", cc)
	}
}

func TestSetupLoadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9999\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := testCLI(t)
	c.configPath = path
	if err := c.setup(&cobra.Command{}, nil); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if c.Config.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q", c.Config.Server.Addr)
	}

	if err := os.WriteFile(path, []byte("[server]\nport = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.setup(&cobra.Command{}, nil); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestRunImport(t *testing.T) {
	dir := t.TempDir()
	export := filepath.Join(dir, "export.json")
	data := `[{"uuid":"c1","created_at":"2024-01-01T00:00:00Z","chat_messages":[
		{"sender":"human","created_at":"2024-01-01T00:00:00Z","content":[{"type":"text","text":"hello"}]},
		{"sender":"assistant","created_at":"2024-01-01T00:00:01Z","content":[{"type":"text","text":"hi"}]}]}]`
	if err := os.WriteFile(export, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "conversations.json")
	if err := testCLI(t).runImport(context.Background(), []string{export}, importOpts{format: "auto", output: out}); err != nil {
		t.Fatalf("runImport: %v", err)
	}
	convs, err := conversation.LoadFile(out, conversation.FormatKura)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 || len(convs[0].Messages) != 2 || convs[0].Messages[0].Role != conversation.RoleUser {
		t.Errorf("convs = %+v", convs)
	}
}

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "payload.json")
	if err := cluster.WriteFile(samplePayload(), in); err != nil {
		t.Fatal(err)
	}

	base := filepath.Join(dir, "out", "map")
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		t.Fatal(err)
	}
	c := testCLI(t)
	err := c.runRender(context.Background(), in, []string{"dot", "bubble", "json"}, renderOpts{output: base})
	if err != nil {
		t.Fatalf("runRender: %v", err)
	}
	for _, name := range []string{"map.dot", "map.bubble.svg", "map.json"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestLoadPayloadFromSnapshot(t *testing.T) {
	c := testCLI(t)
	ctx := context.Background()
	snap, err := c.saveSnapshot(ctx, "weekly", samplePayload())
	if err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{"weekly", snap.ID, snap.ID[:6]} {
		p, label, err := c.loadPayload(ctx, ref)
		if err != nil {
			t.Fatalf("loadPayload(%q): %v", ref, err)
		}
		if label != "weekly" || len(p.Clusters) != 4 {
			t.Errorf("loadPayload(%q) = %q, %d clusters", ref, label, len(p.Clusters))
		}
	}

	if _, _, err := c.loadPayload(ctx, "missing"); err == nil {
		t.Error("expected error for unknown snapshot")
	}
}

func TestRenderTree(t *testing.T) {
	lm := hierarchy.Build(samplePayload().Clusters)

	full := renderTree(lm, 0)
	if n := strings.Count(full, "\n"); n != 4 {
		t.Errorf("full tree has %d lines:\n%s", n, full)
	}
	for _, want := range []string{"Coding", "Go", "Rust", "Cooking", "75.0%", "66.7%"} {
		if !strings.Contains(full, want) {
			t.Errorf("tree missing %q:\n%s", want, full)
		}
	}

	roots := renderTree(lm, 1)
	if strings.Contains(roots, "Rust") || strings.Count(roots, "\n") != 2 {
		t.Errorf("depth-limited tree:\n%s", roots)
	}
}

func TestRenderLevelTable(t *testing.T) {
	lm := hierarchy.Build(samplePayload().Clusters)
	out := renderLevelTable(lm, hierarchy.Summarize(lm))
	for _, want := range []string{"Level", "Largest", "Coding (75.0%)", "Go (66.7%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("Programmiersprachen", 8); got != "Program…" {
		t.Errorf("got %q", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Success", nil, 0},
		{"Interrupted", context.Canceled, 130},
		{"BadInput", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", "png"), 2},
		{"MissingSnapshot", errors.New(errors.ErrCodeSnapshotNotFound, "no snapshot"), 3},
		{"ServiceDown", errors.New(errors.ErrCodeNetwork, "unreachable"), 4},
		{"Other", io.ErrUnexpectedEOF, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
