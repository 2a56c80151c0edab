//go:build !windows

package syncerrors

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// errnoName maps a syscall.Errno to its stable short code name using the
// POSIX errno constants exposed by golang.org/x/sys/unix.
func errnoName(errno syscall.Errno) string {
	switch unix.Errno(errno) {
	case unix.ENOSPC:
		return "ENOSPC"
	case unix.EACCES:
		return "EACCES"
	case unix.EPERM:
		return "EPERM"
	case unix.ENOENT:
		return "ENOENT"
	case unix.EEXIST:
		return "EEXIST"
	case unix.ENOTDIR:
		return "ENOTDIR"
	case unix.EISDIR:
		return "EISDIR"
	case unix.EMFILE:
		return "EMFILE"
	case unix.ENFILE:
		return "ENFILE"
	case unix.EROFS:
		return "EROFS"
	case unix.ENAMETOOLONG:
		return "ENAMETOOLONG"
	case unix.EXDEV:
		return "EXDEV"
	case unix.EBUSY:
		return "EBUSY"
	case unix.EIO:
		return "EIO"
	case unix.ETIMEDOUT:
		return "ETIMEDOUT"
	case unix.ENOTCONN:
		return "ENOTCONN"
	case unix.EAGAIN:
		return "EAGAIN"
	default:
		return ""
	}
}
