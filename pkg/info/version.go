package info

import (
	"fmt"
)

const (
	// VersionMajor is the current major version.
	VersionMajor = 0
	// VersionMinor is the current minor version.
	VersionMinor = 1
	// VersionPatch is the current patch version.
	VersionPatch = 0
)

// Version is the current version in dotted form.
var Version string

func init() {
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
