package alert

import (
	"sync"
	"time"
)

// DefaultLogCapacity bounds the number of fired alerts the Log retains.
const DefaultLogCapacity = 200

// Log is a bounded, thread-safe record of recently fired alerts. The
// dashboard serves it at /api/v1/alerts; the notifier uses it for the daily
// digest alert count.
type Log struct {
	mu  sync.Mutex
	buf []Fired
	cap int
}

// NewLog returns a Log retaining at most capacity entries. A capacity <= 0
// falls back to DefaultLogCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{cap: capacity}
}

// Add appends fired alerts, dropping the oldest entries beyond capacity.
func (l *Log) Add(fired ...Fired) {
	if len(fired) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = append(l.buf, fired...)
	if len(l.buf) > l.cap {
		l.buf = l.buf[len(l.buf)-l.cap:]
	}
}

// Recent returns copies of all retained alerts fired after cutoff, newest
// last.
func (l *Log) Recent(cutoff time.Time) []Fired {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Fired, 0, len(l.buf))
	for _, f := range l.buf {
		if f.At.After(cutoff) {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of retained alerts.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buf)
}
