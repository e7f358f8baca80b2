// Package log provides a structured logging system for vubsub components.
package log

import (
	"context"
	"log/slog"
	"time"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Fields is a map of field names to values.
type Fields map[string]interface{}

// Context keys for propagating logging context
const (
	RequestIDKey = "request_id"
	TraceIDKey   = "trace_id"
	ComponentKey = "component"
	OperationKey = "operation"
)

// Entry represents a single log entry.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
	Caller    string
	Error     error
}

// Logger defines the core logging interface for vubsub components.
type Logger interface {
	// Structured logging methods (Field-based API)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// Printf-style variants
	Debugf(msg string, args ...interface{})
	Infof(msg string, args ...interface{})
	Warnf(msg string, args ...interface{})
	Errorf(msg string, args ...interface{})
	Fatalf(msg string, args ...interface{})

	// With adds fields to the logger
	With(fields ...Field) Logger

	// WithError adds an error field to the logger
	WithError(err error) Logger

	// WithContext adds request context to the Logger
	WithContext(ctx context.Context) Logger

	// WithComponent tags logs with a component name
	WithComponent(component string) Logger

	// SetLevel sets the minimum log level
	SetLevel(level Level)

	// GetLevel returns the current minimum log level
	GetLevel() Level
}

// Formatter defines the interface for formatting log entries.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Output defines the interface for log outputs.
type Output interface {
	Write(entry *Entry, formattedEntry []byte) error
	Close() error
}

// LoggerOption is a function that configures a logger.
type LoggerOption func(*BaseLogger)

// BaseLogger implements the Logger interface.
type BaseLogger struct {
	level      Level
	fields     Fields
	formatter  Formatter
	outputs    []Output
	slogLogger *slog.Logger
}

// ContextExtractor extracts logging context from a context.Context.
func ContextExtractor(ctx context.Context) Fields {
	if ctx == nil {
		return Fields{}
	}
	fields := Fields{}
	if v := ctx.Value(RequestIDKey); v != nil {
		fields[RequestIDKey] = v
	}
	if v := ctx.Value(TraceIDKey); v != nil {
		fields[TraceIDKey] = v
	}
	if v := ctx.Value(ComponentKey); v != nil {
		fields[ComponentKey] = v
	}
	if v := ctx.Value(OperationKey); v != nil {
		fields[OperationKey] = v
	}
	return fields
}

// NewLogger creates a new logger with the given options.
func NewLogger(options ...LoggerOption) Logger {
	logger := &BaseLogger{
		level:     InfoLevel,
		fields:    Fields{},
		formatter: &TextFormatter{},
		outputs:   []Output{},
	}

	for _, option := range options {
		option(logger)
	}

	if len(logger.outputs) == 0 {
		logger.outputs = append(logger.outputs, NewConsoleOutput())
	}

	logger.slogLogger = slog.New(newBridgeHandler(logger))
	return logger
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) {
		l.level = level
	}
}

// WithFormatter sets the log formatter.
func WithFormatter(formatter Formatter) LoggerOption {
	return func(l *BaseLogger) {
		l.formatter = formatter
	}
}

// WithOutput adds an output to the logger.
func WithOutput(output Output) LoggerOption {
	return func(l *BaseLogger) {
		l.outputs = append(l.outputs, output)
	}
}
