package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/rjfmedia/lempicka-sync/cmd"
	"github.com/rjfmedia/lempicka-sync/pkg/logging"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/engine"
)

// newLogger constructs the logger shared by every subcommand, honoring the
// persistent --log-level flag.
func newLogger() *logging.Logger {
	level, ok := logging.NameToLevel(commonConfiguration.logLevel)
	if !ok {
		level = logging.LevelWarn
	}
	return logging.NewLogger(level, os.Stderr)
}

var commonConfiguration struct {
	// logLevel controls the verbosity of the shared logger.
	logLevel string
}

// printProgress renders a single progress event to a shared status line,
// breaking onto a fresh line for phases that represent a discrete event
// rather than an in-progress update.
func printProgress(printer *cmd.StatusLinePrinter, p engine.Progress) {
	switch p.Phase {
	case engine.PhaseCopying:
		printer.Print(fmt.Sprintf("Copying %s: %s / %s",
			p.TargetRelativePath, humanize.Bytes(uint64(p.CurrentFileBytes)), humanize.Bytes(uint64(p.CurrentFileTotalBytes))))
	case engine.PhaseCopied:
		printer.Print(fmt.Sprintf("Copied %s (%d/%d)", p.TargetRelativePath, p.Completed, p.Total))
	case engine.PhaseFailed:
		printer.BreakIfNonEmpty()
		cmd.Warning(fmt.Sprintf("%s failed: %s", p.TargetRelativePath, p.Message))
	case engine.PhaseRetrying:
		printer.Print(fmt.Sprintf("Retrying %s (attempt %d): %s", p.TargetRelativePath, p.RetryAttempt, p.Message))
	case engine.PhasePaused:
		printer.Print("Paused")
	case engine.PhaseComplete:
		printer.Clear()
		fmt.Printf("Copied %d of %d files (%s)\n", p.Completed, p.Total, humanize.Bytes(uint64(p.BytesTransferred)))
	}
}
