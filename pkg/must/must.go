package must

import (
	"fmt"
	"io"

	"github.com/boxmux/boxmux/pkg/logging"
)

// Fprint writes to w, logging (rather than returning) any error or short
// write. It is used at call sites where an output-stream failure is not
// worth propagating as an operation failure in its own right.
func Fprint(w io.Writer, logger *logging.Logger, a ...any) {
	s := fmt.Sprint(a...)
	n, err := fmt.Fprint(w, s)
	if err != nil {
		logger.Warnf("unable to write '%s': %s", s, err.Error())
	}
	if n < len(s) {
		logger.Warnf("unable to write all of '%s'; wrote only %d of %d bytes", s, n, len(s))
	}
}

// Close closes c, logging (rather than returning) any error. It is used at
// cleanup call sites (typically deferred) where a close failure does not
// change the outcome of the operation already performed.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// Succeed logs, rather than returns, a failure encountered performing task.
// It is used for best-effort operations whose failure is worth a warning but
// not worth aborting the surrounding operation over.
func Succeed(err error, task string, logger *logging.Logger) {
	if err != nil {
		logger.Warnf("unable to %s: %s", task, err.Error())
	}
}
