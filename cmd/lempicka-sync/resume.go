package main

import (
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rjfmedia/lempicka-sync/cmd"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/engine"
)

func resumeMain(command *cobra.Command, arguments []string) error {
	if resumeConfiguration.journalPath == "" {
		return errors.New("a --journal path is required")
	}

	logger := newLogger()
	e := engine.New(logger)

	cancelSignals := make(chan os.Signal, 1)
	signal.Notify(cancelSignals, cmd.TerminationSignals...)
	defer signal.Stop(cancelSignals)
	go func() {
		for range cancelSignals {
			cmd.Warning("cancellation requested, finishing current file before stopping")
			e.Cancel()
		}
	}()

	if cmd.PauseSignal != nil {
		pauseSignals := make(chan os.Signal, 1)
		signal.Notify(pauseSignals, cmd.PauseSignal)
		defer signal.Stop(pauseSignals)

		go func() {
			for range pauseSignals {
				if e.TogglePause() {
					cmd.Warning("pause requested")
				} else {
					cmd.Warning("resuming")
				}
			}
		}()
	}

	printer := &cmd.StatusLinePrinter{}
	// ShouldCancel/ShouldPause are left nil so Engine.Sync (called internally
	// by Resume) wires them to this Engine's own cancel/pause flags, the same
	// way sync's configuration overlay does.
	options := engine.SyncOptions{}
	result, err := e.Resume(resumeConfiguration.journalPath, func(p engine.Progress) { printProgress(printer, p) }, options)
	if err != nil {
		printer.BreakIfNonEmpty()
		return errors.Wrap(err, "resume failed")
	}

	printer.BreakIfNonEmpty()
	if result.Copied == result.Total {
		cmd.Warning("nothing left to resume; journal has been removed")
	}

	return nil
}

var resumeCommand = &cobra.Command{
	Use:   "resume",
	Short: "Resumes an interrupted run from its recovery journal",
	Run:   cmd.Mainify(resumeMain),
}

var resumeConfiguration struct {
	// help indicates whether or not help information should be shown.
	help bool
	// journalPath is the recovery journal to resume from.
	journalPath string
}

func init() {
	flags := resumeCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&resumeConfiguration.help, "help", "h", false, "Show help information")
	flags.StringVar(&resumeConfiguration.journalPath, "journal", "", "Specify the recovery journal path")
}
