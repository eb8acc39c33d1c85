// Package version holds build metadata set with -ldflags.
package version

import "fmt"

var (
	Version = "0.1.0"
	Commit  = "dev"
)

// String formats the version for display.
func String() string {
	return fmt.Sprintf("reword %s (%s)", Version, Commit)
}
