// Package logging provides small tagged loggers with per-component colors.
package logging

import (
	"errors"
	"io"
	"log"
)

const colorReset = "\033[0m"

// Logger is the leveled logging surface components depend on.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// TaggedLogger writes leveled, colored log lines prefixed with a component tag.
type TaggedLogger struct {
	tag   string
	color string
	out   *log.Logger
}

// New creates a logger for the given component tag. The color wraps the tag
// and level markers; pass an empty color to disable coloring.
func New(tag, color string, w io.Writer) (*TaggedLogger, error) {
	if tag == "" {
		return nil, errors.New("logger tag must not be empty")
	}

	return &TaggedLogger{
		tag:   tag,
		color: color,
		out:   log.New(w, "", log.LstdFlags),
	}, nil
}

func (l *TaggedLogger) write(level, msg string) {
	if l.color == "" {
		l.out.Printf("[%s] [%s] %s", l.tag, level, msg)
		return
	}
	l.out.Printf("%s[%s] [%s]%s %s", l.color, l.tag, level, colorReset, msg)
}

// Info logs an informational message.
func (l *TaggedLogger) Info(msg string) {
	l.write("INFO", msg)
}

// Warning logs a warning message.
func (l *TaggedLogger) Warning(msg string) {
	l.write("WARNING", msg)
}

// Error logs an error message.
func (l *TaggedLogger) Error(msg string) {
	l.write("ERROR", msg)
}
