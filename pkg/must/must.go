// Package must provides helpers for best-effort cleanup operations whose
// errors are worth logging but never worth propagating — closing a file
// after a prior error, removing a temporary file on a rollback path, and
// similar situations where failure would just be a second error layered on
// top of the one already being returned.
package must

import (
	"io"
	"os"

	"github.com/rjfmedia/lempicka-sync/pkg/logging"
)

// Close closes c, logging any error as a warning.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes the named file, logging any error as a warning. Absence
// of the file is not an error.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}

// IOCopy copies from src to dst, logging any error as a warning.
func IOCopy(dst io.Writer, src io.Reader, logger *logging.Logger) {
	if _, err := io.Copy(dst, src); err != nil {
		logger.Warnf("unable to copy from source to destination: %s", err.Error())
	}
}
