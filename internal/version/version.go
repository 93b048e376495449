// Package version exposes build metadata stamped via ldflags.
package version

// Version is the release version, overridden at build time.
var Version = "0.0.0"

// GitCommit is the short commit hash of the build.
var GitCommit = "unknown"

// BuildDate is the UTC timestamp of the build.
var BuildDate = "unknown"
