package info

import (
	"os"
)

// DebugEnabled controls whether or not debug-level logging is enabled. It is
// set automatically based on the BOXMUX_DEBUG environment variable.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("BOXMUX_DEBUG") == "1"
}
