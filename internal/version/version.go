// Package version holds build metadata, set with -ldflags at release time.
package version

// Version is overridden via -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "dev"
