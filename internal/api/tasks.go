package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/batch"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/hermes"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/metrics"
	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
)

type TasksHandler struct {
	engine *scoring.Engine
	hermes hermes.Client
	logger *slog.Logger
}

func NewTasksHandler(e *scoring.Engine, h hermes.Client, logger *slog.Logger) *TasksHandler {
	return &TasksHandler{engine: e, hermes: h, logger: logger}
}

// Analyze scores a batch: POST /api/tasks/analyze.
func (h *TasksHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	tasks, strategy, ok := h.readBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.analyze(r.Context(), tasks, strategy))
}

// Suggest returns the top scored tasks. GET reads the batch from ?tasks=,
// POST takes the same body as Analyze.
func (h *TasksHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), scoring.DefaultSuggestLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var tasks []scoring.Task
	strategy := r.URL.Query().Get("strategy")
	if r.Method == http.MethodGet {
		param := r.URL.Query().Get("tasks")
		if param == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "provide tasks via ?tasks=[JSON] or POST them to /api/tasks/suggest",
			})
			return
		}
		tasks, err = batch.DecodeTasks([]byte(param))
		if err != nil {
			writeDecodeError(w, err)
			return
		}
	} else {
		var ok bool
		tasks, strategy, ok = h.readBatch(w, r)
		if !ok {
			return
		}
	}

	a := h.analyze(r.Context(), tasks, strategy)
	writeJSON(w, http.StatusOK, scoring.TopSuggestions(a, limit))
}

// Matrix buckets a scored batch into Eisenhower quadrants: POST /api/tasks/matrix.
func (h *TasksHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	tasks, strategy, ok := h.readBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, scoring.BuildMatrix(h.analyze(r.Context(), tasks, strategy)))
}

func (h *TasksHandler) readBatch(w http.ResponseWriter, r *http.Request) ([]scoring.Task, string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return nil, "", false
	}
	tasks, strategy, err := batch.Decode(body, r.URL.Query().Get("strategy"))
	if err != nil {
		writeDecodeError(w, err)
		return nil, "", false
	}
	return tasks, strategy, true
}

// analyze runs the engine and reports the result to metrics and the bus.
func (h *TasksHandler) analyze(ctx context.Context, tasks []scoring.Task, strategy string) scoring.Analysis {
	start := time.Now()
	a := h.engine.Analyze(ctx, tasks, strategy)
	elapsed := time.Since(start)

	metrics.ObserveAnalysis(a, elapsed)

	if h.hermes != nil {
		top := make([]string, 0, scoring.DefaultSuggestLimit)
		for _, s := range scoring.TopSuggestions(a, scoring.DefaultSuggestLimit).Suggestions {
			top = append(top, s.ID)
		}
		evt := hermes.AnalysisCompletedEvent{
			AnalysisID: uuid.New().String(),
			Strategy:   a.Strategy,
			TaskCount:  len(a.Tasks),
			CycleCount: len(a.Cycles),
			Warnings:   len(a.Warnings),
			TopTaskIDs: top,
			DurationMs: elapsed.Milliseconds(),
			Timestamp:  time.Now().UTC(),
		}
		if err := h.hermes.Publish(hermes.SubjectAnalysisCompleted(a.Strategy), evt); err != nil {
			h.logger.Warn("failed to publish analysis event", "strategy", a.Strategy, "error", err)
		}
	}
	return a
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var verr *batch.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "invalid task data",
			"errors": verr.Errors,
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
