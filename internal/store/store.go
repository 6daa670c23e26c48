package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownDriver is returned by Open for an unsupported ledger driver.
var ErrUnknownDriver = errors.New("unknown store driver")

// LedgerEntry is the accumulated feedback for one strategy.
// Invariant: 0 <= Positive <= Total.
type LedgerEntry struct {
	Positive int `json:"positive"`
	Total    int `json:"total"`
}

// SuccessRate returns Positive/Total, or 0 for an empty entry.
func (e LedgerEntry) SuccessRate() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Positive) / float64(e.Total)
}

// Feedback is a single "was this ranking helpful" event.
type Feedback struct {
	ID         uuid.UUID `json:"id"`
	TaskID     string    `json:"task_id,omitempty"`
	Strategy   string    `json:"strategy"`
	WasHelpful bool      `json:"was_helpful"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists the feedback ledger.
//
// RecordFeedback increments Total (and Positive when the feedback was
// helpful) for fb.Strategy and returns the updated entry. Implementations
// serialize the read-modify-write per strategy and make the update durable
// before returning. A strategy with no feedback yet reads as a zero entry.
type Store interface {
	GetLedgerEntry(ctx context.Context, strategy string) (LedgerEntry, error)
	ListLedger(ctx context.Context) (map[string]LedgerEntry, error)
	RecordFeedback(ctx context.Context, fb *Feedback) (LedgerEntry, error)
	Close() error
}

func applyFeedback(e LedgerEntry, helpful bool) LedgerEntry {
	e.Total++
	if helpful {
		e.Positive++
	}
	return e
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
