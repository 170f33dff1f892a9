package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Severity is the level vocabulary of the logging collaborator.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityNotice
	SeverityWarning
	SeverityError
	SeverityEmerg
)

// Custom slog levels for the two severities slog has no name for.
const (
	LevelNotice = slog.Level(2)
	LevelEmerg  = slog.Level(12)
)

var severityNames = map[Severity]string{
	SeverityDebug:   "debug",
	SeverityInfo:    "info",
	SeverityNotice:  "notice",
	SeverityWarning: "warning",
	SeverityError:   "error",
	SeverityEmerg:   "emerg",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Level maps a severity onto its slog level.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityNotice:
		return LevelNotice
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	case SeverityEmerg:
		return LevelEmerg
	default:
		return slog.LevelInfo
	}
}

// ParseSeverity accepts the severity names plus the "warn" shorthand.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return SeverityDebug, nil
	case "info", "":
		return SeverityInfo, nil
	case "notice":
		return SeverityNotice, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "emerg":
		return SeverityEmerg, nil
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", name)
}

// Logger defines the interface for logging in hestia.
// It provides the six collaborator severities and a mechanism to add structured context.
type Logger interface {
	// Debug logs a message at the debug level.
	Debug(msg string, args ...any)
	// Info logs a message at the info level.
	Info(msg string, args ...any)
	// Notice logs a message at the notice level.
	Notice(msg string, args ...any)
	// Warn logs a message at the warning level.
	Warn(msg string, args ...any)
	// Error logs a message at the error level.
	Error(msg string, args ...any)
	// Emerg logs a message at the highest severity.
	Emerg(msg string, args ...any)
	// Log is the collaborator call contract: message, severity and optional detail.
	Log(msg string, sev Severity, detail string)
	// With returns a new Logger with the given structured context added.
	With(args ...any) Logger
}

// Log is the global logger instance used throughout the application.
// It is initialized with a default JSON handler pointing to stdout.
var Log Logger = New(os.Stdout, SeverityInfo)

// InitLogger initializes the global Log instance with the specified logging level.
// Unknown levels fall back to info.
func InitLogger(level string) {
	InitLoggerTo(os.Stdout, level)
}

// InitLoggerTo is InitLogger with an explicit sink.
func InitLoggerTo(w io.Writer, level string) {
	sev, _ := ParseSeverity(level)
	Log = New(w, sev)
}

// New builds a JSON logger writing to w that drops records below min.
func New(w io.Writer, min Severity) Logger {
	opts := &slog.HandlerOptions{
		Level: min.Level(),
		// Add source file info for better debugging
		AddSource:   true,
		ReplaceAttr: replaceLevel,
	}
	return &wrapper{l: slog.New(slog.NewJSONHandler(w, opts))}
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch lvl {
	case LevelNotice:
		a.Value = slog.StringValue("NOTICE")
	case LevelEmerg:
		a.Value = slog.StringValue("EMERG")
	}
	return a
}

// Safe runs fn and swallows any panic raised by a failing log sink.
func Safe(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

type wrapper struct {
	l *slog.Logger
}

func (w *wrapper) Debug(msg string, args ...any)  { w.l.Debug(msg, args...) }
func (w *wrapper) Info(msg string, args ...any)   { w.l.Info(msg, args...) }
func (w *wrapper) Notice(msg string, args ...any) { w.l.Log(context.Background(), LevelNotice, msg, args...) }
func (w *wrapper) Warn(msg string, args ...any)   { w.l.Warn(msg, args...) }
func (w *wrapper) Error(msg string, args ...any)  { w.l.Error(msg, args...) }
func (w *wrapper) Emerg(msg string, args ...any)  { w.l.Log(context.Background(), LevelEmerg, msg, args...) }
func (w *wrapper) With(args ...any) Logger        { return &wrapper{l: w.l.With(args...)} }

func (w *wrapper) Log(msg string, sev Severity, detail string) {
	if detail == "" {
		w.l.Log(context.Background(), sev.Level(), msg)
		return
	}
	w.l.Log(context.Background(), sev.Level(), msg, "detail", detail)
}

// Personal.AI order the ending
