package syncerrors

import (
	"errors"
	"os"
	"syscall"
)

// recoverableFSCodes is the set of OS error codes that the retry kernel (C6)
// considers transient and worth retrying with backoff.
var recoverableFSCodes = map[string]bool{
	"EBUSY":     true,
	"EMFILE":    true,
	"ENFILE":    true,
	"EIO":       true,
	"ENOENT":    true,
	"ENOTCONN":  true,
	"EAGAIN":    true,
	"ETIMEDOUT": true,
}

// IsRecoverableFSCode returns whether the named OS error code is eligible
// for automatic retry.
func IsRecoverableFSCode(code string) bool {
	return recoverableFSCodes[code]
}

// FSCodeFromError extracts a short, stable OS error code name (e.g.
// "ENOSPC") from err, if one can be determined. It returns "" if err does
// not wrap a recognized syscall.Errno.
func FSCodeFromError(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if name := errnoName(errno); name != "" {
			return name
		}
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		if errors.As(pathErr.Err, &errno) {
			return errnoName(errno)
		}
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		if errors.As(linkErr.Err, &errno) {
			return errnoName(errno)
		}
	}

	return ""
}

// IsRecoverable returns whether err carries an OS error code considered
// transient and retryable.
func IsRecoverable(err error) bool {
	return IsRecoverableFSCode(FSCodeFromError(err))
}

// HintForFSCode returns a short, human-readable hint describing the named
// OS error code, or "" if no hint is available.
func HintForFSCode(code string) string {
	switch code {
	case "ENOSPC":
		return "No space left on destination device."
	case "EACCES", "EPERM":
		return "Permission denied."
	case "ENOENT":
		return "No such file or directory."
	case "EEXIST":
		return "File already exists."
	case "ENOTDIR":
		return "Not a directory."
	case "EISDIR":
		return "Is a directory."
	case "EMFILE", "ENFILE":
		return "Too many open files."
	case "EROFS":
		return "Destination is read-only."
	case "ENAMETOOLONG":
		return "Path name too long."
	case "EXDEV":
		return "Cross-device link."
	case "EBUSY":
		return "Resource busy."
	case "EIO":
		return "I/O error."
	case "ETIMEDOUT":
		return "Operation timed out."
	default:
		return ""
	}
}
