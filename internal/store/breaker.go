package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerOptions configures the circuit breaker wrapped around a ledger.
type BreakerOptions struct {
	Enabled          bool
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
}

// DefaultBreakerOptions trips after 5 consecutive failures and probes again
// after 30 seconds.
func DefaultBreakerOptions() BreakerOptions {
	return BreakerOptions{
		Enabled:          true,
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// BreakerStore guards a remote ledger with a circuit breaker. While the
// breaker is open calls fail fast with gobreaker.ErrOpenState and scoring
// falls back to base weights without waiting on the backend.
type BreakerStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next. The name labels state-change log lines.
func NewBreakerStore(next Store, name string, opts BreakerOptions, logger *slog.Logger) *BreakerStore {
	threshold := opts.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: opts.MaxRequests,
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("ledger circuit breaker state changed",
				"store", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &BreakerStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State reports the breaker state ("closed", "half-open", "open").
func (s *BreakerStore) State() string {
	return s.breaker.State().String()
}

func (s *BreakerStore) GetLedgerEntry(ctx context.Context, strategy string) (LedgerEntry, error) {
	v, err := s.breaker.Execute(func() (any, error) {
		return s.next.GetLedgerEntry(ctx, strategy)
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return v.(LedgerEntry), nil
}

func (s *BreakerStore) ListLedger(ctx context.Context) (map[string]LedgerEntry, error) {
	v, err := s.breaker.Execute(func() (any, error) {
		return s.next.ListLedger(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]LedgerEntry), nil
}

func (s *BreakerStore) RecordFeedback(ctx context.Context, fb *Feedback) (LedgerEntry, error) {
	v, err := s.breaker.Execute(func() (any, error) {
		return s.next.RecordFeedback(ctx, fb)
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return v.(LedgerEntry), nil
}

func (s *BreakerStore) Close() error {
	return s.next.Close()
}
