// Package history keeps the gateway's in-memory record of recent order
// attempts. It is deliberately ephemeral: the process owns it, it resets on
// restart, and nothing here is a persistence layer.
package history

import (
	"sync"
	"time"
)

const defaultMaxEntries = 200

type Entry struct {
	Time      time.Time `json:"time"`
	RequestID string    `json:"request_id,omitempty"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Type      string    `json:"type"`
	Quantity  string    `json:"quantity"`
	Price     string    `json:"price"`
	OrderID   int64     `json:"order_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Store is a bounded, newest-first list safe for concurrent appends from
// simultaneous gateway requests.
type Store struct {
	mu         sync.Mutex
	maxEntries int
	entries    []Entry
}

func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	return &Store{
		maxEntries: maxEntries,
	}
}

func (s *Store) Append(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[len(s.entries)-s.maxEntries:]
	}
}

// List returns a copy, newest first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	for i, entry := range s.entries {
		out[len(s.entries)-1-i] = entry
	}

	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
