//go:build !windows

package cmd

// HandleTerminalCompatibility restarts the process inside a terminal
// compatibility shim if necessary. No such shim is required on POSIX
// systems.
func HandleTerminalCompatibility() {}
