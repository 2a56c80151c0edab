// Package filesystem provides various filesystem utility methods either not
// provided by the Go standard library or requiring a more careful
// implementation, including atomic file writes and renames with cross-device
// fallback.
package filesystem
