package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. Loggers are safe for
// concurrent use.
type Logger struct {
	// level is the maximum level that this logger (and its subloggers) will
	// emit.
	level Level
	// output is the underlying log.Logger used for formatting and writing.
	output *log.Logger
	// prefix is any component-name prefix specified for the logger.
	prefix string
}

// RootLogger is the root logger from which all other loggers derive. It logs
// to standard error at LevelInfo by default.
var RootLogger = NewLogger(LevelInfo, os.Stderr)

// NewLogger creates a new logger that writes to the specified writer, logging
// at levels up to and including the specified level.
func NewLogger(level Level, destination io.Writer) *Logger {
	return &Logger{
		level:  level,
		output: log.New(destination, "", log.LstdFlags),
	}
}

// SetLevel adjusts the logger's level. It is safe to call on a nil logger (in
// which case it is a no-op).
func (l *Logger) SetLevel(level Level) {
	if l != nil {
		l.level = level
	}
}

// Sublogger creates a new sublogger with the specified name, inheriting the
// parent's level and destination.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}

	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	return &Logger{
		level:  l.level,
		output: l.output,
		prefix: prefix,
	}
}

// line formats a line with the logger's prefix, if any.
func (l *Logger) line(level, line string) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, line)
	}
	return fmt.Sprintf("%s: %s", level, line)
}

func (l *Logger) emit(level Level, tag, line string) {
	if l == nil || l.level < level {
		return
	}
	l.output.Output(3, l.line(tag, line))
}

// Error logs at LevelError.
func (l *Logger) Error(v ...any) { l.emit(LevelError, "error", fmt.Sprint(v...)) }

// Errorf logs at LevelError with format semantics.
func (l *Logger) Errorf(format string, v ...any) {
	l.emit(LevelError, "error", fmt.Sprintf(format, v...))
}

// Warn logs at LevelWarn.
func (l *Logger) Warn(v ...any) { l.emit(LevelWarn, "warn", fmt.Sprint(v...)) }

// Warnf logs at LevelWarn with format semantics.
func (l *Logger) Warnf(format string, v ...any) {
	l.emit(LevelWarn, "warn", fmt.Sprintf(format, v...))
}

// Info logs at LevelInfo.
func (l *Logger) Info(v ...any) { l.emit(LevelInfo, "info", fmt.Sprint(v...)) }

// Infof logs at LevelInfo with format semantics.
func (l *Logger) Infof(format string, v ...any) {
	l.emit(LevelInfo, "info", fmt.Sprintf(format, v...))
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(v ...any) { l.emit(LevelDebug, "debug", fmt.Sprint(v...)) }

// Debugf logs at LevelDebug with format semantics.
func (l *Logger) Debugf(format string, v ...any) {
	l.emit(LevelDebug, "debug", fmt.Sprintf(format, v...))
}

// Trace logs at LevelTrace.
func (l *Logger) Trace(v ...any) { l.emit(LevelTrace, "trace", fmt.Sprint(v...)) }

// Tracef logs at LevelTrace with format semantics.
func (l *Logger) Tracef(format string, v ...any) {
	l.emit(LevelTrace, "trace", fmt.Sprintf(format, v...))
}

// Writer returns an io.Writer that writes each line it receives at LevelInfo.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return &writer{callback: l.Info}
}

// WarnColored prints a warning to w in yellow, independent of
// the logger's level — used by CLI front ends that want colored terminal
// output distinct from structured logging.
func WarnColored(w io.Writer, format string, v ...any) {
	fmt.Fprintln(w, color.YellowString(format, v...))
}

// ErrorColored prints an error to w in red, independent of the logger's
// level.
func ErrorColored(w io.Writer, format string, v ...any) {
	fmt.Fprintln(w, color.RedString(format, v...))
}
