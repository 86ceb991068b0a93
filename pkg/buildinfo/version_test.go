package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func stamp(t *testing.T, version, commit string) {
	t.Helper()
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })
	Version, Commit = version, commit
}

func TestStampedValuesWin(t *testing.T) {
	stamp(t, "v0.3.0", "0123456789abcdef")

	i := Get()
	if i.Version != "v0.3.0" || i.Commit != "0123456789abcdef" {
		t.Errorf("Get() = %+v", i)
	}
	if i.ShortCommit() != "0123456" {
		t.Errorf("ShortCommit() = %q", i.ShortCommit())
	}
	if i.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", i.GoVersion)
	}
	if !strings.Contains(String(), "version: v0.3.0") {
		t.Errorf("String() = %q", String())
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version: v0.3.0") {
		t.Errorf("Template() = %q", Template())
	}
}

func TestUserAgent(t *testing.T) {
	stamp(t, "v1.2.0", "abc")

	want := "clustermap/v1.2.0 (abc; " + runtime.GOOS + ")"
	if got := UserAgent(); got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}
