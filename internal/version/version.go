package version

import "fmt"

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/sidebargen/internal/version.Version=v0.3.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is the one-line version banner printed by --version.
func String() string {
	return fmt.Sprintf("sidebargen %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
