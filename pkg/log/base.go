package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

func (l *BaseLogger) logAt(level Level, msg string, attrs []slog.Attr) {
	if level < l.level {
		return
	}
	l.slogLogger.LogAttrs(context.Background(), toSlogLevel(level), msg, attrs...)
	if level == FatalLevel {
		os.Exit(1)
	}
}

// Debug logs a message at DebugLevel.
func (l *BaseLogger) Debug(msg string, fields ...Field) {
	l.logAt(DebugLevel, msg, attrsFromFieldSlice(fields))
}

// Info logs a message at InfoLevel.
func (l *BaseLogger) Info(msg string, fields ...Field) {
	l.logAt(InfoLevel, msg, attrsFromFieldSlice(fields))
}

// Warn logs a message at WarnLevel.
func (l *BaseLogger) Warn(msg string, fields ...Field) {
	l.logAt(WarnLevel, msg, attrsFromFieldSlice(fields))
}

// Error logs a message at ErrorLevel.
func (l *BaseLogger) Error(msg string, fields ...Field) {
	l.logAt(ErrorLevel, msg, attrsFromFieldSlice(fields))
}

// Fatal logs a message at FatalLevel and exits the process.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.logAt(FatalLevel, msg, attrsFromFieldSlice(fields))
}

// Debugf logs a formatted message at DebugLevel.
func (l *BaseLogger) Debugf(msg string, args ...interface{}) {
	l.logAt(DebugLevel, fmt.Sprintf(msg, args...), nil)
}

// Infof logs a formatted message at InfoLevel.
func (l *BaseLogger) Infof(msg string, args ...interface{}) {
	l.logAt(InfoLevel, fmt.Sprintf(msg, args...), nil)
}

// Warnf logs a formatted message at WarnLevel.
func (l *BaseLogger) Warnf(msg string, args ...interface{}) {
	l.logAt(WarnLevel, fmt.Sprintf(msg, args...), nil)
}

// Errorf logs a formatted message at ErrorLevel.
func (l *BaseLogger) Errorf(msg string, args ...interface{}) {
	l.logAt(ErrorLevel, fmt.Sprintf(msg, args...), nil)
}

// Fatalf logs a formatted message at FatalLevel and exits the process.
func (l *BaseLogger) Fatalf(msg string, args ...interface{}) {
	l.logAt(FatalLevel, fmt.Sprintf(msg, args...), nil)
}

// With returns a child logger with the provided fields attached to every entry.
func (l *BaseLogger) With(fields ...Field) Logger {
	child := l.clone()
	for _, f := range fields {
		child.fields[f.Key] = f.Value
	}
	child.slogLogger = l.slogLogger.With(attrsToAny(attrsFromFieldSlice(fields))...)
	return child
}

// WithError returns a child logger with an error field attached.
func (l *BaseLogger) WithError(err error) Logger {
	return l.With(Err(err))
}

// WithContext returns a child logger carrying fields extracted from ctx.
func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	extracted := ContextExtractor(ctx)
	if len(extracted) == 0 {
		return l
	}
	fields := make([]Field, 0, len(extracted))
	for k, v := range extracted {
		fields = append(fields, F(k, v))
	}
	return l.With(fields...)
}

// WithComponent returns a child logger tagged with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum log level.
func (l *BaseLogger) SetLevel(level Level) { l.level = level }

// GetLevel returns the current minimum log level.
func (l *BaseLogger) GetLevel() Level { return l.level }

func (l *BaseLogger) clone() *BaseLogger {
	fields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &BaseLogger{
		level:      l.level,
		fields:     fields,
		formatter:  l.formatter,
		outputs:    l.outputs,
		slogLogger: l.slogLogger,
	}
}
