// Package buildinfo reports which clustermap build is running.
//
// Release builds stamp the values with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/clustermap/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/clustermap/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/clustermap/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds fall back to the VCS data the Go toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is a snapshot of the build metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified,omitempty"`
}

var (
	vcsOnce sync.Once
	vcs     Info
)

// readVCS pulls vcs.* settings from the embedded build info.
func readVCS() Info {
	vcsOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			vcs.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				vcs.Commit = s.Value
			case "vcs.time":
				vcs.Date = s.Value
			case "vcs.modified":
				vcs.Modified = s.Value == "true"
			}
		}
	})
	return vcs
}

// Get returns the stamped values, filling unstamped ones from VCS data.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
	fallback := readVCS()
	if info.Version == "dev" && fallback.Version != "" {
		info.Version = fallback.Version
	}
	if info.Commit == "none" && fallback.Commit != "" {
		info.Commit = fallback.Commit
		info.Modified = fallback.Modified
	}
	if info.Date == "unknown" && fallback.Date != "" {
		info.Date = fallback.Date
	}
	return info
}

// ShortCommit is the first 7 characters of the commit.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// String returns the formatted build information.
func String() string {
	i := Get()
	dirty := ""
	if i.Modified {
		dirty = " (modified)"
	}
	return fmt.Sprintf("version: %s\ncommit: %s%s\nbuilt: %s\ngo: %s", i.Version, i.Commit, dirty, i.Date, i.GoVersion)
}

// Template returns the version template for cobra.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}

// UserAgent identifies clustermap in outgoing requests.
func UserAgent() string {
	i := Get()
	return fmt.Sprintf("clustermap/%s (%s; %s)", i.Version, i.ShortCommit(), runtime.GOOS)
}
