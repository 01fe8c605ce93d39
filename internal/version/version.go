// Package version reports which deptrim build is running.
package version

import (
	"runtime/debug"
	"sync"
)

// Set with -ldflags "-X deptrim/internal/version.Version=0.4.0 -X deptrim/internal/version.Commit=abc1234".
// An unset Commit is read from the VCS stamp in the build info.
var (
	Version = "0.3.0"
	Commit  = ""
)

var revision = sync.OnceValues(func() (string, bool) {
	if Commit != "" {
		return Commit, false
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return rev, dirty
})

// String returns the version with a short commit when one is known,
// e.g. "0.3.0 (abc1234)" or "0.3.0 (abc1234-dirty)".
func String() string {
	rev, dirty := revision()
	return format(Version, rev, dirty)
}

func format(version, rev string, dirty bool) string {
	if rev == "" {
		return version
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if dirty {
		rev += "-dirty"
	}
	return version + " (" + rev + ")"
}
