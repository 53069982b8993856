// Package version holds build metadata injected with ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/docagent/internal/version.Version=v0.3.0"
package version

import "fmt"

// Version is the release version of the binary.
var Version = "dev"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line printed by --version.
func String() string {
	return fmt.Sprintf("docagent %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
