// Package buildinfo records which stratum release produced a layout.
//
// The variables are stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/stratum/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/stratum/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/stratum/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/stratum
//
// Version doubles as the layout cache scope: coordinates computed by one
// release are never replayed by another.
package buildinfo

import "fmt"

var (
	// Version is the release tag, e.g. "v0.3.0", or "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// CacheScope returns the prefix of every layout cache key.
func CacheScope() string {
	return "stratum@" + Version + ":"
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (layout engine)\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
