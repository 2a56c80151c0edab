package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rjfmedia/lempicka-sync/cmd"
)

func rootMain(command *cobra.Command, arguments []string) {
	if rootConfiguration.version {
		printVersion()
		return
	}
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "lempicka-sync",
	Short: "lempicka-sync copies the highest-versioned file in a directory tree onto an unversioned destination tree",
	Run:   rootMain,
}

var rootConfiguration struct {
	// help indicates whether or not help information should be shown.
	help bool
	// version indicates whether or not version information should be shown.
	version bool
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.StringVar(&commonConfiguration.logLevel, "log-level", "warn", "Specify log level (disabled|error|warn|info|debug|trace)")

	localFlags := rootCommand.Flags()
	localFlags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")

	cobra.EnableCommandSorting = false

	rootCommand.AddCommand(
		planCommand,
		syncCommand,
		resumeCommand,
		recoverCommand,
		historyCommand,
		versionCommand,
	)
}

func main() {
	cmd.HandleTerminalCompatibility()

	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
