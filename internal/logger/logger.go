// Package logger provides structured logging for the msrp CLI.
// It wraps log/slog and writes to stderr so stdout stays reserved for reports.
//
// Two output formats are supported:
//   - Human (default): key=value text lines
//   - JSON: machine-readable structured records
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the log output format.
type Format int

const (
	FormatHuman Format = iota
	FormatJSON
)

// Logger is the process-wide logger.
var Logger *slog.Logger

var (
	out    io.Writer = os.Stderr
	level            = new(slog.LevelVar)
	format           = FormatHuman
)

func init() {
	level.Set(slog.LevelWarn)
	rebuild()
}

func rebuild() {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatJSON:
		Logger = slog.New(slog.NewJSONHandler(out, opts))
	default:
		Logger = slog.New(slog.NewTextHandler(out, opts))
	}
}

// ParseFormat maps "human"/"text" and "json" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "human", "text":
		return FormatHuman, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatHuman, fmt.Errorf("unsupported log format %q (use human|json)", s)
	}
}

// Setup replaces the output, level and format in one call.
func Setup(w io.Writer, lvl slog.Level, f Format) {
	if w != nil {
		out = w
	}
	level.Set(lvl)
	format = f
	rebuild()
}

// SetLevel configures the logging level.
func SetLevel(lvl slog.Level) { level.Set(lvl) }

// SetFormat configures the output format.
func SetFormat(f Format) {
	format = f
	rebuild()
}

func Info(msg string, args ...any)  { Logger.Info(msg, args...) }
func Debug(msg string, args ...any) { Logger.Debug(msg, args...) }
func Warn(msg string, args ...any)  { Logger.Warn(msg, args...) }
func Error(msg string, args ...any) { Logger.Error(msg, args...) }

// WithDataset returns a logger tagged with the dataset name.
func WithDataset(name string) *slog.Logger {
	return Logger.With(slog.String("dataset", name))
}

// WithStage returns a logger tagged with a pipeline stage position and target.
func WithStage(l *slog.Logger, index int, kind, column string) *slog.Logger {
	if l == nil {
		l = Logger
	}
	return l.With(
		slog.Int("stage", index),
		slog.String("kind", kind),
		slog.String("column", column),
	)
}
