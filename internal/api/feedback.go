package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/batch"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/hermes"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/metrics"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/store"
)

type FeedbackHandler struct {
	engine   *scoring.Engine
	adaptive *scoring.Adaptive
	ledger   store.Store
	hermes   hermes.Client
	logger   *slog.Logger
}

func NewFeedbackHandler(e *scoring.Engine, a *scoring.Adaptive, ledger store.Store, h hermes.Client, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{engine: e, adaptive: a, ledger: ledger, hermes: h, logger: logger}
}

type FeedbackRequest struct {
	TaskID     batch.ID `json:"task_id"`
	Strategy   string   `json:"strategy"`
	WasHelpful *bool    `json:"was_helpful"`
}

type FeedbackResponse struct {
	FeedbackID string            `json:"feedback_id"`
	Strategy   string            `json:"strategy"`
	Ledger     store.LedgerEntry `json:"ledger"`
	Weights    scoring.WeightSet `json:"weights"`
}

// Register records one feedback event: POST /api/feedback.
func (h *FeedbackHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.WasHelpful == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "was_helpful required"})
		return
	}

	fb := &store.Feedback{
		TaskID:     string(req.TaskID),
		Strategy:   req.Strategy,
		WasHelpful: *req.WasHelpful,
	}
	resp, err := h.register(r.Context(), fb)
	if err != nil {
		status := http.StatusServiceUnavailable
		var unknown *unknownStrategyError
		if errors.As(err, &unknown) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleSubmit consumes FeedbackSubmitEvent messages from the bus.
func (h *FeedbackHandler) HandleSubmit(subject string, data []byte) {
	var evt hermes.FeedbackSubmitEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		h.logger.Warn("invalid feedback event", "subject", subject, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fb := &store.Feedback{TaskID: evt.TaskID, Strategy: evt.Strategy, WasHelpful: evt.WasHelpful}
	if _, err := h.register(ctx, fb); err != nil {
		h.logger.Warn("failed to register feedback from bus", "subject", subject, "error", err)
	}
}

type unknownStrategyError struct {
	name  string
	known []string
}

func (e *unknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy %q (known: %v)", e.name, e.known)
}

func (h *FeedbackHandler) register(ctx context.Context, fb *store.Feedback) (*FeedbackResponse, error) {
	strategies := h.engine.Strategies()
	if fb.Strategy == "" {
		fb.Strategy = strategies.Fallback()
	}
	if _, _, ok := strategies.Lookup(fb.Strategy); !ok {
		return nil, &unknownStrategyError{name: fb.Strategy, known: strategies.Names()}
	}

	entry, err := h.adaptive.Record(ctx, fb)
	if err != nil {
		return nil, err
	}
	metrics.ObserveFeedback(fb.Strategy, fb.WasHelpful)

	_, weights, _ := h.engine.Weights(ctx, fb.Strategy)

	if h.hermes != nil {
		evt := hermes.FeedbackRegisteredEvent{
			FeedbackID: fb.ID.String(),
			TaskID:     fb.TaskID,
			Strategy:   fb.Strategy,
			WasHelpful: fb.WasHelpful,
			Positive:   entry.Positive,
			Total:      entry.Total,
			Timestamp:  fb.CreatedAt,
		}
		if err := h.hermes.Publish(hermes.SubjectFeedbackRegistered(fb.Strategy), evt); err != nil {
			h.logger.Warn("failed to publish feedback event", "strategy", fb.Strategy, "error", err)
		}
	}

	return &FeedbackResponse{
		FeedbackID: fb.ID.String(),
		Strategy:   fb.Strategy,
		Ledger:     entry,
		Weights:    weights,
	}, nil
}

type StrategyStats struct {
	Name        string            `json:"name"`
	Base        scoring.WeightSet `json:"base"`
	Weights     scoring.WeightSet `json:"weights"`
	Ledger      store.LedgerEntry `json:"ledger"`
	SuccessRate float64           `json:"success_rate"`
}

// Stats reports the ledger and effective weights per strategy: GET /api/feedback/stats.
func (h *FeedbackHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.ledger.ListLedger(r.Context())
	if err != nil {
		h.logger.Error("failed to list ledger", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "feedback ledger unavailable"})
		return
	}

	strategies := h.engine.Strategies()
	out := make([]StrategyStats, 0, len(strategies.Names()))
	for _, name := range strategies.Names() {
		base, _, _ := strategies.Lookup(name)
		_, weights, _ := h.engine.Weights(r.Context(), name)
		entry := ledger[name]
		out = append(out, StrategyStats{
			Name:        name,
			Base:        base,
			Weights:     weights,
			Ledger:      entry,
			SuccessRate: entry.SuccessRate(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"strategies": out})
}
