package diag

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// locationKey is the zap field carrying the rendered Location.
const locationKey = "loc"

// traceLevel sits one step below zap's debug level.
const traceLevel = zapcore.DebugLevel - 1

var linePool = buffer.NewPool()

var levelStyles = map[Level]lipgloss.Style{
	Trace: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Debug: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	Info:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	Error: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

func toZap(l Level) zapcore.Level {
	switch l {
	case Trace:
		return traceLevel
	case Debug:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warn:
		return zapcore.WarnLevel
	}
	return zapcore.ErrorLevel
}

func fromZap(l zapcore.Level) Level {
	switch {
	case l <= traceLevel:
		return Trace
	case l == zapcore.DebugLevel:
		return Debug
	case l == zapcore.InfoLevel:
		return Info
	case l == zapcore.WarnLevel:
		return Warn
	}
	return Error
}

// lineEncoder renders "<loc> <level>: <msg>\n". Field encoding is delegated
// to the embedded console encoder, but only the location field is printed.
type lineEncoder struct {
	zapcore.Encoder
	color bool
}

func newLineEncoder(color bool) *lineEncoder {
	return &lineEncoder{Encoder: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{}), color: color}
}

func (e *lineEncoder) Clone() zapcore.Encoder {
	return &lineEncoder{Encoder: e.Encoder.Clone(), color: e.color}
}

func (e *lineEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := linePool.Get()
	for _, f := range fields {
		if f.Key == locationKey && f.Type == zapcore.StringType {
			line.AppendString(f.String)
			line.AppendByte(' ')
			break
		}
	}
	line.AppendString(e.label(fromZap(ent.Level)))
	line.AppendString(": ")
	line.AppendString(ent.Message)
	line.AppendByte('\n')
	return line, nil
}

func (e *lineEncoder) label(l Level) string {
	if !e.color {
		return l.String()
	}
	return levelStyles[l].Render(l.String())
}

// Options configures a ZapSink. Nil writers default to os.Stdout and os.Stderr.
type Options struct {
	MinLevel Level
	Color    bool
	Stdout   io.Writer
	Stderr   io.Writer
}

// ZapSink writes diagnostics through a zap logger whose core is split at
// error level: errors go to Stderr, everything else to Stdout.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(opts Options) *ZapSink {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	min := toZap(opts.MinLevel)
	isErrorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= min
	})
	isOutputLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= min
	})

	encoder := newLineEncoder(opts.Color)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stderr)), isErrorLevel),
		zapcore.NewCore(encoder.Clone(), zapcore.Lock(zapcore.AddSync(stdout)), isOutputLevel),
	)
	return &ZapSink{logger: zap.New(core)}
}

func (s *ZapSink) Log(level Level, loc Location, format string, args ...any) {
	lvl := toZap(level)
	if !s.logger.Core().Enabled(lvl) {
		return
	}
	if ce := s.logger.Check(lvl, sprintf(format, args)); ce != nil {
		ce.Write(zap.String(locationKey, loc.String()))
	}
}

// Sync flushes both writers.
func (s *ZapSink) Sync() error {
	return s.logger.Sync()
}

var (
	defaultMu   sync.Mutex
	defaultSink Sink
)

// Default returns the process-wide sink, a ZapSink over stdout and stderr
// unless SetDefault installed another one.
func Default() Sink {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSink == nil {
		defaultSink = NewZapSink(Options{MinLevel: Trace})
	}
	return defaultSink
}

// SetDefault replaces the sink returned by Default.
func SetDefault(s Sink) {
	defaultMu.Lock()
	defaultSink = s
	defaultMu.Unlock()
}

func sprintf(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
