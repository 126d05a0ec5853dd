package service

import (
	"sync"
	"time"

	"github.com/velkovb/taskforge/pkg/models"
)

// AuditLog is an append-only, in-process record of every attempted mutation.
// Sequence numbers are assigned by the log itself under a single lock, so they
// are strictly increasing and gapless across all concurrent writers, including
// entries recording failed operations. Recorded entries are never mutated.
type AuditLog struct {
	mu      sync.RWMutex
	nextSeq int64
	entries []models.AuditEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{nextSeq: 1}
}

// Record appends the entry and returns its assigned sequence number. Record
// never rejects an entry based on content.
func (l *AuditLog) Record(e models.AuditEntry) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Seq = l.nextSeq
	l.nextSeq++
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	l.entries = append(l.entries, e)
	return e.Seq
}

// Query returns matching entries ordered by sequence ascending. The result is
// a copy; callers can iterate and re-iterate it freely without observing
// later appends.
func (l *AuditLog) Query(f models.AuditFilter) []models.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []models.AuditEntry
	for _, e := range l.entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of recorded entries.
func (l *AuditLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
