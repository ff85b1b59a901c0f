// Package version carries build identification injected via -ldflags.
package version

import "fmt"

var (
	// Version is the release identifier, overridden at build time.
	Version = "dev"
	// GitSHA records the source revision the binary was built from.
	GitSHA = "unknown"
	// BuildTime records when the binary was built.
	BuildTime = "unknown"
)

// String formats the full build identification line printed by the version
// subcommand and the server startup log.
func String() string {
	return fmt.Sprintf("no2map %s (commit %s, built %s)", Version, GitSHA, BuildTime)
}
