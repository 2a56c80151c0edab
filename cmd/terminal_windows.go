//go:build windows

package cmd

import (
	"os"
	"os/exec"

	isatty "github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// HandleTerminalCompatibility relaunches the current process inside winpty
// if it is running under a mintty-based (Cygwin) console. Status line
// carriage-return updates and ANSI colors are unreliable under mintty
// without this.
func HandleTerminalCompatibility() {
	if !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return
	}

	winpty, err := exec.LookPath("winpty")
	if err != nil {
		Fatal(errors.New("running inside mintty terminal and unable to locate winpty"))
	}

	executable, err := os.Executable()
	if err != nil {
		Fatal(errors.Wrap(err, "running inside mintty terminal and unable to locate current executable"))
	}

	arguments := make([]string, 0, len(os.Args))
	arguments = append(arguments, executable)
	arguments = append(arguments, os.Args[1:]...)

	command := exec.Command(winpty, arguments...)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	command.Run()
	os.Exit(command.ProcessState.ExitCode())
}
