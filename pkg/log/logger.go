package log

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs the package's JSON handler as the process-wide slog
// default. Errors logged through ErrAttr carry their captured stack trace as
// a separate attribute, see StackTraceHandler.
func SetupLogger(level string) {
	opts := slog.HandlerOptions{
		AddSource: true,
		Level:     ParseLevel(level),
	}
	handler := slog.NewJSONHandler(os.Stderr, &opts)
	slog.SetDefault(slog.New(NewStackTraceHandler(handler)))
}

// ParseLevel maps a level name to its slog level. Unknown names fall back
// to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	// ErrAttrKey is the attribute key under which errors are logged.
	ErrAttrKey = "error"

	// StacktraceAttrKey is the attribute key for extracted stack traces.
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps an error for structured logging.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
