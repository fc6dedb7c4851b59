// Package alerts prints one-line run summaries next to tabular output.
package alerts

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/gradesync/internal/cmd/emoji"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure or error condition.
	LevelError Level = iota
	// LevelWarning indicates a run that finished with rows needing attention.
	LevelWarning
	// LevelSuccess indicates a clean run.
	LevelSuccess
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Icon returns the symbol printed before the message.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return emoji.Error
	case LevelWarning:
		return emoji.Warning
	case LevelSuccess:
		return emoji.Success
	default:
		return emoji.Info
	}
}

func (l Level) color() string {
	switch l {
	case LevelError:
		return "\033[31m"
	case LevelWarning:
		return "\033[33m"
	default:
		return "\033[32m"
	}
}

const reset = "\033[0m"

// Alert is a status line with optional indented details.
type Alert struct {
	Level   Level
	Message string
	Details []string
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message}
}

// WithDetails adds detail lines.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns the alert without color.
func (a *Alert) String() string {
	return a.Level.Icon() + " " + a.Message
}

// Writer prints alerts, coloring them when the destination is a terminal.
type Writer struct {
	w     io.Writer
	color bool
}

// NewWriter creates a Writer. noColor disables color even on a terminal.
func NewWriter(w io.Writer, noColor bool) *Writer {
	return &Writer{w: w, color: !noColor && isTerminal(w)}
}

// Write prints a.
func (w *Writer) Write(a *Alert) error {
	line := a.String()
	if w.color {
		line = a.Level.color() + line + reset
	}
	if _, err := fmt.Fprintln(w.w, line); err != nil {
		return err
	}
	for _, d := range a.Details {
		if _, err := fmt.Fprintf(w.w, "   %s\n", d); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
