// Package log configures structured JSON logging for the training CLI.
//
// Logging is confined to the outermost command layer: library packages
// return errors instead of logging, and the CLI decides how to present
// them. The handler extracts cockroachdb/errors stack traces into a
// dedicated attribute so a single log line carries the full failure
// context.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs the process-wide slog logger used by the CLI.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		Level: ToLogLevel(loglevel),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{Key: "severity", Value: attr.Value}
			case slog.MessageKey:
				attr = slog.Attr{Key: "message", Value: attr.Value}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel maps a level name to its slog level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	// ErrAttrKey is the attribute key the CLI uses for the error value.
	ErrAttrKey = "error"
	// StacktraceAttrKey is the attribute key the handler fills with the
	// extracted stack trace.
	StacktraceAttrKey = "stacktrace"
)
