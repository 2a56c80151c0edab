//go:build windows

package cmd

// statusLineFormat uses 79 rather than 80 columns on Windows: for cmd.exe
// consoles the printed width needs to be narrower than the console (80
// columns by default) for carriage-return wipes to work correctly.
const statusLineFormat = "\r%-79.79s"
