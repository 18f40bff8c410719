// Package version reports the build version of the h5bank tools.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/h5bank/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/h5bank/internal/version.Commit=abc1234"
//
// Unset values are filled from the module build info, then fall back to a
// dev version.
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			fillFromSettings(info.Settings)
		}
	}
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fillFromSettings takes vcs.* build settings into Version and Commit.
func fillFromSettings(settings []debug.BuildSetting) {
	var revision, modified, vcsTime string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if Commit == "" && revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		Commit = revision
		if modified == "true" {
			Commit += "-dirty"
		}
	}

	if Version == "" && vcsTime != "" {
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			Version = "dev-" + t.Format("20060102")
		}
	}
}

// Full returns the version including the commit.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Line returns the line printed by a tool's version command.
func Line(tool string) string {
	return tool + " " + Full()
}
