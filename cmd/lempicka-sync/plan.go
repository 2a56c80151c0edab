package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rjfmedia/lempicka-sync/cmd"
	"github.com/rjfmedia/lempicka-sync/pkg/sync/engine"
)

func planMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 2 {
		return errors.New("invalid number of arguments: expected <left-root> <right-root>")
	}
	left, right := arguments[0], arguments[1]

	e := engine.New(newLogger())
	bundle, err := e.BuildComparePlan(left, right)
	if err != nil {
		return errors.Wrap(err, "unable to build comparison plan")
	}

	var totalBytes int64
	for _, item := range bundle.Plan {
		totalBytes += item.SourceSize
	}

	fmt.Printf("Candidates considered: %d\n", bundle.TotalCandidates)
	fmt.Printf("Files to copy:         %d (%s)\n", bundle.PendingCount, humanize.Bytes(uint64(totalBytes)))
	fmt.Printf("Directories to create: %d\n", len(bundle.DirectoriesToCreate))

	if planConfiguration.verbose {
		for _, item := range bundle.Plan {
			fmt.Printf("  %s  <-  %s (v%d, %s)\n",
				item.TargetRelativePath, item.SourceRelativePath, item.Version, humanize.Bytes(uint64(item.SourceSize)))
		}
		for _, dir := range bundle.DirectoriesToCreate {
			fmt.Printf("  mkdir %s\n", dir)
		}
	}

	return nil
}

var planCommand = &cobra.Command{
	Use:   "plan <left-root> <right-root>",
	Short: "Computes and displays the pending copy plan without performing any copies",
	Run:   cmd.Mainify(planMain),
}

var planConfiguration struct {
	// help indicates whether or not help information should be shown.
	help bool
	// verbose lists every planned item and directory individually.
	verbose bool
}

func init() {
	flags := planCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&planConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&planConfiguration.verbose, "verbose", "v", false, "List every planned item")
}
