// Package audit holds the process-wide append-only audit log. Entries are
// archived by value: each one is a snapshot of a finished pipeline context
// and never changes after insertion. The log lives in memory only.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one archived context snapshot. The snapshot keys are joined by
// "id" and "timestamp" stamped at append time.
type Entry map[string]any

// Log is a mutex-guarded append-only sequence. Injected into the pipeline
// rather than held as ambient state so tests get isolated logs and
// concurrent requests cannot corrupt each other's entries. Ordering of
// entries from concurrent requests is append-completion order.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

func NewLog() *Log {
	return &Log{}
}

// Append archives a context snapshot, stamping a UTC timestamp and a unique
// id, and returns the stored entry. The caller must pass an already-copied
// snapshot; the log takes ownership of it.
func (l *Log) Append(snapshot map[string]any) Entry {
	entry := make(Entry, len(snapshot)+2)
	for k, v := range snapshot {
		entry[k] = v
	}
	entry["id"] = uuid.NewString()
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return entry
}

// Entries returns a copy of the sequence in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports how many entries have been archived.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
