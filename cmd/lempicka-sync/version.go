package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rjfmedia/lempicka-sync/cmd"
	"github.com/rjfmedia/lempicka-sync/pkg/lempicka"
)

func printVersion() {
	fmt.Println(lempicka.Version)
}

func versionMain(command *cobra.Command, arguments []string) error {
	printVersion()
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   cmd.Mainify(versionMain),
}
