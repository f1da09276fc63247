// Package log provides the user-facing console output of the CLI: one line
// per staged entry plus summary lines, colored by operation kind. Structured
// diagnostics go through zerolog separately; this logger is only about what
// the user sees.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎯 Kind classifies a reported file operation.
type Kind string

const (
	KindFile         Kind = "file"
	KindDir          Kind = "dir"
	KindSymlink      Kind = "symlink"
	KindMaterialized Kind = "materialized" // external symlink copied as content
	KindSkipped      Kind = "skipped"
)

// 📄 FileOperation represents one staged entry for display.
type FileOperation struct {
	Path string // path relative to the destination root
	Kind Kind
}

// 🎯 Logger handles console output alongside structured logging.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger writing user-facing lines to console.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a discarding logger when
// none was stored.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, zerolog.Disabled)
	}
	return logger
}

// 🎯 NewContext adds the logger to context.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileOperation formats one operation line.
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Kind {
	case KindDir:
		symbol = '•'
		symbolColor = color.FgCyan
	case KindSymlink:
		symbol = '↪'
		symbolColor = color.FgYellow
	case KindMaterialized:
		symbol = '⇉'
		symbolColor = color.FgBlue
	case KindSkipped:
		symbol = '-'
		symbolColor = color.FgHiBlack
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}
	return fmt.Sprintf("    %s %s", color.New(symbolColor).Sprint(string(symbol)), op.Path)
}

// 📄 LogFileOperation displays a file operation to the user.
func (l *Logger) LogFileOperation(op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, l.formatFileOperation(op))
	l.zlog.Debug().Str("path", op.Path).Str("kind", string(op.Kind)).Msg("file operation")
}

// 📦 LogStaging announces a staging operation.
func (l *Logger) LogStaging(source, destination string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.Bold).Sprint("staging"),
		source,
		color.New(color.FgHiBlack).Sprint("→"),
		destination)
}

// ✅ Success displays a success message.
func (l *Logger) Success(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, color.New(color.FgGreen).Sprint("✓ ")+fmt.Sprintf(format, args...))
}

// 🚨 Error displays an error message.
func (l *Logger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, color.New(color.FgRed).Sprint("✗ ")+fmt.Sprintf(format, args...))
}
