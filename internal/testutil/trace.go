package testutil

import (
	"fmt"
	"sync"
)

// Trace is an append-only, ordered log of side effects shared by the fakes in
// this package, so tests can assert the relative order of backend calls,
// alerts and navigation.
type Trace struct {
	mu     sync.Mutex
	events []string
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Addf appends a formatted event. A nil *Trace discards it.
func (t *Trace) Addf(format string, args ...any) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, fmt.Sprintf(format, args...))
}

// Events returns a copy of the events so far.
func (t *Trace) Events() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.events))
	copy(out, t.events)
	return out
}

// Index returns the position of the first event equal to e, or -1.
func (t *Trace) Index(e string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, ev := range t.events {
		if ev == e {
			return i
		}
	}
	return -1
}
