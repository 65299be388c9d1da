// Package history records every processed import attempt.
//
// Entries are append-only. The console lists them per screen to show which
// files were imported and why rejected attempts failed.
package history

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// DefaultMemoryEntries bounds the in-memory store used without a database.
const DefaultMemoryEntries = 1000

// RowError is one validation failure of a rejected attempt.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Entry is one processed import attempt.
type Entry struct {
	ID              uuid.UUID  `json:"id"`
	SchemaKey       string     `json:"schema"`
	SessionID       string     `json:"sessionId"`
	FileName        string     `json:"fileName"`
	TotalRows       int        `json:"totalRows"`
	NewRecordsAdded int        `json:"newRecordsAdded"`
	RecordsUpdated  int        `json:"recordsUpdated"`
	Accepted        bool       `json:"accepted"`
	Errors          []RowError `json:"errors"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Store persists import attempts.
type Store interface {
	// Record appends an entry. A zero ID or CreatedAt is filled in.
	Record(ctx context.Context, e Entry) error
	// List returns the newest entries for a schema first.
	List(ctx context.Context, schemaKey string, limit int) ([]Entry, error)
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
}

// NewMemoryStore returns a store holding at most max entries (0 = unbounded).
// The oldest entries are dropped first.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: max}
}

// Record implements Store.
func (m *MemoryStore) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fillDefaults(&e)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, e)
	if m.max > 0 && len(m.entries) > m.max {
		m.entries = slices.Clone(m.entries[len(m.entries)-m.max:])
	}
	return nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, schemaKey string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].SchemaKey == schemaKey {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func fillDefaults(e *Entry) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Errors == nil {
		e.Errors = []RowError{}
	}
}
