package buildinfo

import (
	"runtime/debug"
	"sync"
)

// These variables are intended to be set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/hrbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/hrbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/hrbot/core/buildinfo.Date=2025-08-30T12:00:00Z'
//
// When they are left at their defaults, Resolve fills Commit and Date from the
// VCS stamp that go build embeds.
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

var resolveOnce sync.Once

// Resolve fills unset build metadata from runtime/debug.ReadBuildInfo.
func Resolve() {
	resolveOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fill(info.Settings)
	})
}

func fill(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "local" && s.Value != "" {
				Commit = s.Value
				if len(Commit) > 12 {
					Commit = Commit[:12]
				}
			}
		case "vcs.time":
			if Date == "" {
				Date = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" && Commit != "local" {
				Commit += "-dirty"
			}
		}
	}
}
