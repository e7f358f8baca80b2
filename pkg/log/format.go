package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// JSONFormatter renders entries as single-line JSON objects.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	obj := make(map[string]interface{}, len(entry.Fields)+4)
	obj["ts"] = entry.Timestamp.UTC().Format(time.RFC3339Nano)
	obj["level"] = entry.Level.String()
	obj["msg"] = entry.Message
	if entry.Caller != "" {
		obj["caller"] = entry.Caller
	}
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			obj[k] = err.Error()
			continue
		}
		obj[k] = v
	}
	if entry.Error != nil {
		obj["error"] = entry.Error.Error()
	}
	return json.Marshal(obj)
}

// TextFormatter renders entries as human-readable lines:
//
//	2006-01-02T15:04:05.000Z INFO  message key=value ...
type TextFormatter struct {
	// DisableTimestamp omits the leading timestamp, useful in tests.
	DisableTimestamp bool
}

// Format implements Formatter.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b bytes.Buffer
	if !f.DisableTimestamp {
		b.WriteString(entry.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"))
		b.WriteByte(' ')
	}
	b.WriteString(fmt.Sprintf("%-5s", entry.Level.String()))
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(formatValue(entry.Fields[k]))
		}
	}
	if entry.Error != nil {
		b.WriteString(" error=")
		b.WriteString(formatValue(entry.Error))
	}
	return b.Bytes(), nil
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		if strings.ContainsAny(t, " \t\"") {
			return fmt.Sprintf("%q", t)
		}
		return t
	case error:
		return fmt.Sprintf("%q", t.Error())
	default:
		return fmt.Sprintf("%v", v)
	}
}
