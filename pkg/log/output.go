package log

import (
	"io"
	"os"
	"sync"
)

// ConsoleOutput writes formatted entries to a writer, stderr by default.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput returns a ConsoleOutput writing to stderr.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{w: os.Stderr}
}

// NewWriterOutput returns a ConsoleOutput writing to the provided writer.
func NewWriterOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

// Write implements Output.
func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.w.Write(formatted); err != nil {
		return err
	}
	_, err := o.w.Write([]byte{'\n'})
	return err
}

// Close implements Output. Console outputs do not own their writer.
func (o *ConsoleOutput) Close() error { return nil }
