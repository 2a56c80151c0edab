//go:build windows

package cmd

import (
	"os"
	"syscall"
)

// TerminationSignals are the signals lempicka-sync treats as requesting
// cancellation of an in-progress run. SIGINT and SIGTERM are both emulated on
// Windows (SIGINT on Ctrl-C and Ctrl-Break, SIGTERM on console close/logoff/
// shutdown events).
var TerminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

// PauseSignal is unavailable on Windows; there is no equivalent of SIGUSR1,
// so pause/resume toggling is not wired to a signal on this platform.
var PauseSignal os.Signal
