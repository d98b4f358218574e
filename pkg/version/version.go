// Package version exposes the halcyon release version.
//
// The canonical version lives in the VERSION file at the repository
// root; the Makefile copies it to pkg/version/version.txt so it can be
// embedded at compile time.
package version

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var versionFile string

// Version is the release version embedded from version.txt.
var Version = strings.TrimSpace(versionFile)

// String returns the bare version string.
func String() string {
	return Version
}

// Full returns the version prefixed with the program name, as printed
// by the -v flag.
func Full() string {
	return "halcyon version " + Version
}
