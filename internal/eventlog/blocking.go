package eventlog

import (
	"time"
)

// WaitForAppend blocks until either a new append occurs or timeout elapses.
// It returns true if woken by an append, false on timeout. The optional done
// channel aborts the wait early (used by tail handles on close).
func (l *Log) WaitForAppend(timeout time.Duration, done <-chan struct{}) bool {
	l.mu.Lock()
	ch := l.notifyCh
	l.mu.Unlock()
	if timeout <= 0 {
		select {
		case <-ch:
			return true
		case <-done:
			return false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	case <-done:
		return false
	}
}
