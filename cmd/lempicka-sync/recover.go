package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rjfmedia/lempicka-sync/cmd"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/engine"
)

func recoverMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("invalid number of arguments: expected <journal-path>")
	}

	e := engine.New(newLogger())
	summary, err := e.RecoverySummary(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to read journal")
	}
	if summary == nil {
		fmt.Println("No recovery journal found; nothing to recover.")
		return nil
	}

	fmt.Printf("Left root:  %s\n", summary.LeftRoot)
	fmt.Printf("Right root: %s\n", summary.RightRoot)
	fmt.Printf("Total:      %d\n", summary.Total)
	fmt.Printf("Completed:  %d\n", summary.Completed)
	fmt.Printf("Pending:    %d\n", summary.Pending)
	fmt.Printf("Failed:     %d\n", summary.FailedCount)
	fmt.Printf("Active:     %d\n", summary.ActiveCount)
	fmt.Printf("Updated at: %s\n", summary.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	if summary.ActiveCount > 0 || summary.Pending > 0 {
		cmd.Warning("run `lempicka-sync resume --journal <path>` to continue this run")
	}

	return nil
}

var recoverCommand = &cobra.Command{
	Use:   "recover <journal-path>",
	Short: "Displays a recovery journal's summary without resuming the run",
	Run:   cmd.Mainify(recoverMain),
}

var recoverConfiguration struct {
	// help indicates whether or not help information should be shown.
	help bool
}

func init() {
	flags := recoverCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&recoverConfiguration.help, "help", "h", false, "Show help information")
}
