package log

import (
	"fmt"
	stdlog "log"
	"strings"
)

// Config describes logger construction from external configuration.
type Config struct {
	// Level is one of debug|info|warn|error|fatal.
	Level string
	// Format is one of text|json.
	Format string
}

// ParseLevel parses a textual level name.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// ApplyConfig builds a Logger from a Config.
func ApplyConfig(cfg *Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var formatter Formatter
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		formatter = &JSONFormatter{}
	case "text", "":
		formatter = &TextFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}
	return NewLogger(WithLevel(level), WithFormatter(formatter)), nil
}

// RedirectStdLog routes standard library log output (used by Pebble) through
// the provided logger at Info level.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdLogWriter{logger: logger})
}

type stdLogWriter struct{ logger Logger }

func (w stdLogWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
