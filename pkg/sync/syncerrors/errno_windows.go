//go:build windows

package syncerrors

import "syscall"

// errnoName maps a syscall.Errno to its stable short code name on Windows,
// where errno values are translated from the underlying Win32 error codes
// by the Go runtime. Only the subset referenced by HintForFSCode and the
// retry kernel's recoverable set is covered.
func errnoName(errno syscall.Errno) string {
	switch errno {
	case syscall.ENOSPC:
		return "ENOSPC"
	case syscall.EACCES:
		return "EACCES"
	case syscall.EPERM:
		return "EPERM"
	case syscall.ENOENT:
		return "ENOENT"
	case syscall.EEXIST:
		return "EEXIST"
	case syscall.ENOTDIR:
		return "ENOTDIR"
	case syscall.EISDIR:
		return "EISDIR"
	case syscall.EMFILE:
		return "EMFILE"
	case syscall.ENFILE:
		return "ENFILE"
	case syscall.EROFS:
		return "EROFS"
	case syscall.ENAMETOOLONG:
		return "ENAMETOOLONG"
	case syscall.EXDEV:
		return "EXDEV"
	case syscall.EBUSY:
		return "EBUSY"
	case syscall.EIO:
		return "EIO"
	case syscall.ETIMEDOUT:
		return "ETIMEDOUT"
	case syscall.ENOTCONN:
		return "ENOTCONN"
	case syscall.EAGAIN:
		return "EAGAIN"
	default:
		return ""
	}
}
