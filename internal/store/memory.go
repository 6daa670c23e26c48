package store

import (
	"context"
	"sync"
)

// MemoryStore is a process-local ledger. It does not survive restarts.
type MemoryStore struct {
	mu       sync.Mutex
	ledger   map[string]LedgerEntry
	feedback []Feedback
}

// NewMemoryStore returns an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledger: make(map[string]LedgerEntry)}
}

func (s *MemoryStore) GetLedgerEntry(_ context.Context, strategy string) (LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger[strategy], nil
}

func (s *MemoryStore) ListLedger(_ context.Context) (map[string]LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]LedgerEntry, len(s.ledger))
	for k, v := range s.ledger {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) RecordFeedback(_ context.Context, fb *Feedback) (LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := applyFeedback(s.ledger[fb.Strategy], fb.WasHelpful)
	s.ledger[fb.Strategy] = e
	s.feedback = append(s.feedback, *fb)
	return e, nil
}

// Feedback returns a copy of every recorded event, oldest first.
func (s *MemoryStore) Feedback() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Feedback(nil), s.feedback...)
}

func (s *MemoryStore) Close() error { return nil }
