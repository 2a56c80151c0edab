package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// StatusLinePrinter provides printing facilities for a dynamically updating
// status line in the console.
type StatusLinePrinter struct {
	// nonEmpty indicates whether or not the printer has printed any non-empty
	// content to the status line.
	nonEmpty bool
}

// Print prints a message to the status line, overwriting any existing
// content. Messages are truncated or padded to a fixed width so that the
// previous line's content is always fully overwritten.
func (p *StatusLinePrinter) Print(message string) {
	fmt.Fprintf(color.Output, statusLineFormat, message)
	p.nonEmpty = true
}

// Clear clears any content on the status line and returns the cursor to the
// beginning of the line.
func (p *StatusLinePrinter) Clear() {
	p.Print("")
	fmt.Fprint(os.Stdout, "\r")
	p.nonEmpty = false
}

// BreakIfNonEmpty prints a newline if the status line currently holds
// content, so that subsequent output starts on a fresh line.
func (p *StatusLinePrinter) BreakIfNonEmpty() {
	if p.nonEmpty {
		fmt.Fprintln(os.Stdout)
		p.nonEmpty = false
	}
}
