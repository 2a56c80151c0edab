//go:build !windows

package cmd

// statusLineFormat truncates and right-pads status messages to exactly 80
// characters so that the previous line's content is always fully
// overwritten without overflowing an 80-column terminal.
const statusLineFormat = "\r%-80.80s"
