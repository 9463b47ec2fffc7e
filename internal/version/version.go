package version

import (
	"fmt"
	"runtime"
)

// Name is the program name shown in version output.
const Name = "bedtime"

//nolint:gochecknoglobals // Overridden with -ldflags "-X" at build time.
var (
	// Version is the release tag.
	Version = "0.1.0"
	// Commit is the short git SHA, "none" for local builds.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the release tag.
func Short() string {
	return Version
}

// Full returns the name, release tag, commit, build time and Go runtime.
func Full() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s/%s)",
		Name, Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
