// Package diag carries diagnostics from the front end to the user.
//
// A diagnostic is a level, a source location and a message. Sinks decide
// where it goes: the zap-backed sink renders one line per diagnostic,
//
//	<buffer>:<row>:<col> <level>: <message>
//
// sending error-level lines to stderr and everything else to stdout.
package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Level is the severity of a diagnostic.
type Level int8

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int8(l))
}

// ParseLevel maps a level name, case-insensitively, to its Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return Trace, nil
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Info, errors.Errorf("unknown log level %q", name)
}

// Location is a zero-based position inside a named buffer.
type Location struct {
	Buffer string
	Row    int
	Col    int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Buffer, l.Row, l.Col)
}

// Sink receives diagnostics. Implementations used from several goroutines
// must be safe for concurrent use.
type Sink interface {
	Log(level Level, loc Location, format string, args ...any)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(level Level, loc Location, format string, args ...any)

func (f SinkFunc) Log(level Level, loc Location, format string, args ...any) {
	f(level, loc, format, args...)
}

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Level, Location, string, ...any) {})

// Diagnostic is one formatted log call.
type Diagnostic struct {
	Level   Level
	Loc     Location
	Message string
}

// String renders d exactly as the zap sink prints it, without the newline.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Loc, d.Level, d.Message)
}
