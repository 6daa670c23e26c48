package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/store"
)

const (
	// DefaultWarmup is the feedback count required before weights adapt.
	DefaultWarmup = 5
	// DefaultNudge scales how far the success rate moves the importance
	// weight: (rate-0.5)*nudge, i.e. ±5% at the default.
	DefaultNudge = 0.1

	minAdjustedImportance = 0.01
	maxAdjustedImportance = 0.9
)

// FeedbackLedger is the slice of store.Store the adaptive weights need.
type FeedbackLedger interface {
	GetLedgerEntry(ctx context.Context, strategy string) (store.LedgerEntry, error)
	RecordFeedback(ctx context.Context, fb *store.Feedback) (store.LedgerEntry, error)
}

// AdaptiveConfig tunes the online adjustment.
type AdaptiveConfig struct {
	Warmup int
	Nudge  float64
}

// DefaultAdaptiveConfig returns warmup 5 with a ±5% nudge.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{Warmup: DefaultWarmup, Nudge: DefaultNudge}
}

// Adaptive nudges strategy weights from accumulated user feedback.
type Adaptive struct {
	ledger FeedbackLedger
	cfg    AdaptiveConfig
	logger *slog.Logger
}

// NewAdaptive creates an Adaptive backed by ledger. A nil ledger disables
// adjustment and feedback registration.
func NewAdaptive(ledger FeedbackLedger, cfg AdaptiveConfig, logger *slog.Logger) *Adaptive {
	return &Adaptive{ledger: ledger, cfg: cfg, logger: logger}
}

// AdjustedWeights returns base adjusted by the ledger entry for strategy.
// On a ledger failure it returns the normalized base weights and the error.
func (a *Adaptive) AdjustedWeights(ctx context.Context, strategy string, base WeightSet) (WeightSet, error) {
	if a == nil || a.ledger == nil {
		return base.Normalize(), nil
	}
	entry, err := a.ledger.GetLedgerEntry(ctx, strategy)
	if err != nil {
		a.logger.Warn("feedback ledger unavailable, using base weights", "strategy", strategy, "error", err)
		return base.Normalize(), fmt.Errorf("read ledger: %w", err)
	}
	return Adjust(base, entry, a.cfg), nil
}

// Adjust applies one ledger entry to base. Below warmup the normalized base
// is returned unchanged. Otherwise the importance weight, when the preset
// defines one, is scaled by 1+(rate-0.5)*nudge and clamped to [0.01, 0.9]
// before the whole set is renormalized.
func Adjust(base WeightSet, entry store.LedgerEntry, cfg AdaptiveConfig) WeightSet {
	if entry.Total < cfg.Warmup {
		return base.Normalize()
	}
	adj := base
	if adj.Importance > 0 {
		delta := (entry.SuccessRate() - 0.5) * cfg.Nudge
		adj.Importance = clamp(adj.Importance*(1+delta), minAdjustedImportance, maxAdjustedImportance)
	}
	return adj.Normalize()
}

// RegisterFeedback records one helpful/unhelpful event for strategy.
func (a *Adaptive) RegisterFeedback(ctx context.Context, strategy string, helpful bool) (store.LedgerEntry, error) {
	return a.Record(ctx, &store.Feedback{Strategy: strategy, WasHelpful: helpful})
}

// Record persists fb and returns the strategy's updated ledger entry.
func (a *Adaptive) Record(ctx context.Context, fb *store.Feedback) (store.LedgerEntry, error) {
	if a == nil || a.ledger == nil {
		return store.LedgerEntry{}, fmt.Errorf("feedback ledger not configured")
	}
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	entry, err := a.ledger.RecordFeedback(ctx, fb)
	if err != nil {
		return store.LedgerEntry{}, fmt.Errorf("record feedback: %w", err)
	}
	a.logger.Info("feedback registered",
		"strategy", fb.Strategy,
		"helpful", fb.WasHelpful,
		"total", entry.Total,
		"positive", entry.Positive,
	)
	return entry, nil
}
