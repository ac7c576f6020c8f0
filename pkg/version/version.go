// Package version holds build information stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/edgy/edgy/pkg/version.Version=v1.2.0" ./cmd/edgy
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = runtime.Version()
)

// Info returns all build information keyed by name.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
		"go_version": GoVersion,
	}
}

// String returns a one-line summary such as "v1.2.0 (abc123, go1.24.0)".
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, shortCommit(GitCommit), GoVersion)
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
