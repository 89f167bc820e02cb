// Package console provides the leveled, colored logger used by every component.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Level orders log severities.
type Level int

// Log levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger writes info/debug lines to out and warnings/errors to errOut.
// A nil *Logger discards everything.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	min    Level
	warn   *color.Color
	err    *color.Color
	debug  *color.Color
}

// Options configure a Logger.
type Options struct {
	Verbose bool
	Quiet   bool
}

// New returns a Logger writing to out and errOut.
func New(out io.Writer, errOut io.Writer, opts Options) *Logger {
	min := LevelInfo
	if opts.Verbose {
		min = LevelDebug
	}
	if opts.Quiet {
		min = LevelWarn
	}
	return &Logger{
		out:    out,
		errOut: errOut,
		min:    min,
		warn:   color.New(color.FgYellow),
		err:    color.New(color.FgRed),
		debug:  color.New(color.Faint),
	}
}

// Discard returns a Logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, io.Discard, Options{})
}

// Debugf logs a diagnostic line, shown only in verbose mode.
func (l *Logger) Debugf(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Infof logs a progress line.
func (l *Logger) Infof(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warnf logs a recoverable problem.
func (l *Logger) Warnf(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Errorf logs a failure.
func (l *Logger) Errorf(format string, args ...any) {
	l.log(LevelError, format, args...)
}

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil || level < l.min {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf(format, args...)
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}
	switch level {
	case LevelDebug:
		_, _ = l.debug.Fprint(l.out, line)
	case LevelInfo:
		_, _ = io.WriteString(l.out, line)
	case LevelWarn:
		_, _ = l.warn.Fprint(l.errOut, "warning: "+line)
	default:
		_, _ = l.err.Fprint(l.errOut, "error: "+line)
	}
}
