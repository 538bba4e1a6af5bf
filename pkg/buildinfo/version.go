// Package buildinfo holds the version stamped into tilegrid binaries.
//
// The variables are set with ldflags at release time:
//
//	go build -ldflags "-X github.com/matzehuels/tilegrid/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/tilegrid/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" ./cmd/tilegrid
package buildinfo

import "fmt"

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"

	// Commit is the short git SHA the binary was built from.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// Info is the build information reported by the board server.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String formats the info on one line, e.g. "dev (none, unknown)".
func (i Info) String() string {
	return fmt.Sprintf("%s (%s, %s)", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + Current().String() + "\n"
}
