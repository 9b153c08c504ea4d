// Package obs provides the engine's logging setup. It wraps Go's stdlib
// log/slog package exclusively; all log output goes to os.Stderr so stdout
// stays clean for piped report output.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog default logger with the given level and
// format. format should be "json" for JSON output or anything else
// (including empty string) for human-readable text. Output goes to
// os.Stderr. Safe to call multiple times; each call replaces the previous
// global logger.
func Setup(level slog.Level, format string) {
	SetupWithWriter(level, format, os.Stderr)
}

// SetupWithWriter is Setup with an explicit writer, used by tests to
// capture log output in a buffer instead of os.Stderr.
func SetupWithWriter(level slog.Level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ResolveLevel determines the slog.Level from CLI flags and environment.
// Priority (highest to lowest):
//
//  1. ENGINE_DEBUG=1 -> slog.LevelDebug
//  2. verbose flag   -> slog.LevelDebug
//  3. quiet flag     -> slog.LevelError
//  4. default        -> slog.LevelInfo
//
// If both verbose and quiet are set, verbose wins.
func ResolveLevel(verbose, quiet bool) slog.Level {
	if os.Getenv("ENGINE_DEBUG") == "1" {
		return slog.LevelDebug
	}
	if verbose {
		return slog.LevelDebug
	}
	if quiet {
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ResolveFormat reads ENGINE_LOG_FORMAT and returns "json" or "text".
func ResolveFormat() string {
	if strings.EqualFold(os.Getenv("ENGINE_LOG_FORMAT"), "json") {
		return "json"
	}
	return "text"
}

// NewLogger returns a child logger derived from the global default logger
// with a "component" attribute, so log lines can be filtered by subsystem
// (e.g. "render", "drift", "shacl").
func NewLogger(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
