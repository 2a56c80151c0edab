package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rjfmedia/lempicka-sync/cmd"
	"github.com/rjfmedia/lempicka-sync/pkg/must"
)

func historyMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("invalid number of arguments: expected <left-root>")
	}

	path := filepath.Join(arguments[0], "sync-history.log")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No sync history recorded yet.")
			return nil
		}
		return errors.Wrap(err, "unable to open history log")
	}
	defer must.Close(file, nil)

	scanner := bufio.NewScanner(file)
	count := 0
	for scanner.Scan() {
		fields := strings.SplitN(scanner.Text(), "\t", 3)
		if len(fields) != 3 {
			continue
		}
		if historyConfiguration.limit > 0 && count >= historyConfiguration.limit {
			break
		}
		fmt.Printf("%-20s %-40s -> %s\n", fields[0], fields[1], fields[2])
		count++
	}

	return errors.Wrap(scanner.Err(), "error reading history log")
}

var historyCommand = &cobra.Command{
	Use:   "history <left-root>",
	Short: "Displays the completed-copy history recorded alongside a left root",
	Run:   cmd.Mainify(historyMain),
}

var historyConfiguration struct {
	// help indicates whether or not help information should be shown.
	help bool
	// limit caps the number of history lines printed; zero means no limit.
	limit int
}

func init() {
	flags := historyCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&historyConfiguration.help, "help", "h", false, "Show help information")
	flags.IntVarP(&historyConfiguration.limit, "limit", "n", 0, "Limit the number of entries displayed")
}
