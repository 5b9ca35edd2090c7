// Package audit holds the append-only change log.
package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/alexanderramin/portfolio/internal/domain"
)

// Filter narrows a Query. Empty fields match everything.
type Filter struct {
	InitiativeID string
	TaskID       string
	Field        domain.Field
	// Limit keeps only the most recent n records when > 0.
	Limit int
}

func (f Filter) matches(rec *domain.ChangeRecord) bool {
	if f.InitiativeID != "" && rec.InitiativeID != f.InitiativeID {
		return false
	}
	if f.TaskID != "" && rec.TaskID != f.TaskID {
		return false
	}
	if f.Field != "" && rec.Field != f.Field {
		return false
	}
	return true
}

// Log is the change log consumed by the mutation engine and reporting.
type Log interface {
	Append(ctx context.Context, rec domain.ChangeRecord)
	// Query returns matching records sorted by timestamp, ties kept in
	// insertion order.
	Query(f Filter) []domain.ChangeRecord
	// Latest returns the most recent record for field on an initiative.
	Latest(initiativeID string, field domain.Field) (domain.ChangeRecord, bool)
}

// Subscriber observes every appended record. It runs after the record is
// committed to the log and outside the log's lock.
type Subscriber func(ctx context.Context, rec domain.ChangeRecord)

type MemoryLog struct {
	mu          sync.RWMutex
	records     []domain.ChangeRecord
	subscribers []Subscriber
}

// NewMemoryLog returns a log preloaded with seed, typically records read
// back from storage at startup. Seeding does not notify subscribers.
func NewMemoryLog(seed ...domain.ChangeRecord) *MemoryLog {
	return &MemoryLog{records: append([]domain.ChangeRecord(nil), seed...)}
}

func (l *MemoryLog) Subscribe(s Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, s)
}

func (l *MemoryLog) Append(ctx context.Context, rec domain.ChangeRecord) {
	l.mu.Lock()
	l.records = append(l.records, rec)
	subs := l.subscribers
	l.mu.Unlock()

	for _, s := range subs {
		s(ctx, rec)
	}
}

func (l *MemoryLog) Query(f Filter) []domain.ChangeRecord {
	l.mu.RLock()
	out := make([]domain.ChangeRecord, 0, len(l.records))
	for i := range l.records {
		if f.matches(&l.records[i]) {
			out = append(out, l.records[i])
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

func (l *MemoryLog) Latest(initiativeID string, field domain.Field) (domain.ChangeRecord, bool) {
	recs := l.Query(Filter{InitiativeID: initiativeID, Field: field})
	if len(recs) == 0 {
		return domain.ChangeRecord{}, false
	}
	return recs[len(recs)-1], true
}

func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
