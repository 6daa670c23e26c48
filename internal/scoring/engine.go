package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"
)

const (
	defaultImportance     = 5
	defaultEstimatedHours = 4.0

	// DefaultSuggestLimit is the number of tasks returned by Suggest.
	DefaultSuggestLimit = 3

	cycleExplanation = "Task is in a circular dependency. Resolve cycle to compute score."
)

// Warning kinds, used for metrics labels.
const (
	WarnDueDate     = "due_date"
	WarnDuplicateID = "duplicate_id"
	WarnStrategy    = "strategy"
	WarnCalendar    = "calendar"
	WarnLedger      = "ledger"
)

// Task is one input record. Pointer fields are optional and take their
// defaults when nil.
type Task struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	DueDate        string   `json:"due_date,omitempty"`
	Importance     *int     `json:"importance,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
}

// NormalizedTask is a Task with defaults applied and the due date parsed.
type NormalizedTask struct {
	ID             string
	Title          string
	Due            *time.Time
	Importance     int
	EstimatedHours float64
	Dependencies   []string
}

// Warning reports a recoverable data issue. ID is empty for batch-level warnings.
type Warning struct {
	ID      string `json:"id,omitempty"`
	Warning string `json:"warning"`
	Kind    string `json:"-"`
}

// ScoreResult is the outcome for one task. Score is nil when the task sits
// in a dependency cycle.
type ScoreResult struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Score       *float64       `json:"score"`
	Subscores   Subscores      `json:"subscores"`
	Explanation []string       `json:"explanation"`
	Factors     []FactorResult `json:"factors,omitempty"`
}

// Analysis is the full result of one scoring call.
type Analysis struct {
	Strategy string        `json:"strategy"`
	Weights  WeightSet     `json:"weights"`
	Warnings []Warning     `json:"warnings"`
	Cycles   [][]string    `json:"cycles"`
	Tasks    []ScoreResult `json:"tasks"`
}

// Suggestions is the top-N slice of an Analysis.
type Suggestions struct {
	Strategy    string        `json:"strategy"`
	Suggestions []ScoreResult `json:"suggestions"`
	Cycles      [][]string    `json:"cycles"`
	Warnings    []Warning     `json:"warnings"`
}

// EngineConfig wires the engine's collaborators. Zero fields take defaults:
// preset strategies, no adaptation, weekend-only calendar, UTC system clock,
// and the 30-day window with 0.1 no-deadline urgency for each unset
// UrgencyPolicy field.
type EngineConfig struct {
	Strategies *Strategies
	Adaptive   *Adaptive
	Calendar   BusinessCalendar
	Clock      Clock
	Urgency    UrgencyPolicy
}

// Engine scores task batches. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	strategies *Strategies
	adaptive   *Adaptive
	calendar   BusinessCalendar
	clock      Clock
	urgency    UrgencyPolicy
	logger     *slog.Logger
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg EngineConfig, logger *slog.Logger) *Engine {
	e := &Engine{
		strategies: cfg.Strategies,
		adaptive:   cfg.Adaptive,
		calendar:   cfg.Calendar,
		clock:      cfg.Clock,
		urgency:    cfg.Urgency,
		logger:     logger,
	}
	if e.strategies == nil {
		e.strategies = DefaultStrategies()
	}
	if e.calendar == nil {
		e.calendar = NewFixedCalendar()
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.urgency.WindowDays <= 0 {
		e.urgency.WindowDays = DefaultUrgencyWindowDays
	}
	if e.urgency.NoDeadline <= 0 {
		e.urgency.NoDeadline = DefaultNoDeadlineUrgency
	}
	return e
}

// Strategies returns the engine's preset table.
func (e *Engine) Strategies() *Strategies {
	return e.strategies
}

// Weights resolves strategy to its effective (adapted) weight set. An empty
// strategy selects the fallback silently; an unknown one adds a warning.
func (e *Engine) Weights(ctx context.Context, strategy string) (string, WeightSet, []Warning) {
	var warnings []Warning
	base, resolved, ok := e.strategies.Lookup(strategy)
	if !ok && strategy != "" {
		warnings = append(warnings, Warning{
			Kind:    WarnStrategy,
			Warning: fmt.Sprintf("unknown strategy %q, using %s", strategy, resolved),
		})
	}
	w, err := e.adaptive.AdjustedWeights(ctx, resolved, base)
	if err != nil {
		warnings = append(warnings, Warning{
			Kind:    WarnLedger,
			Warning: "feedback ledger unavailable, using base weights",
		})
	}
	return resolved, w, warnings
}

// Analyze scores every task in the batch under strategy.
func (e *Engine) Analyze(ctx context.Context, tasks []Task, strategy string) Analysis {
	normalized, warnings := normalizeTasks(tasks)

	resolved, weights, wwarn := e.Weights(ctx, strategy)
	warnings = append(warnings, wwarn...)

	g := BuildGraph(normalized)
	today := e.clock.Today()

	results := make([]ScoreResult, 0, len(normalized))
	calendarFailed := false
	for _, t := range normalized {
		urgency, err := e.urgency.Normalize(t.Due, today, e.calendar)
		if err != nil && !calendarFailed {
			calendarFailed = true
			e.logger.Warn("business calendar failed, counting calendar days", "error", err)
			warnings = append(warnings, Warning{
				Kind:    WarnCalendar,
				Warning: "business calendar unavailable, urgency uses calendar days",
			})
		}
		subs := Subscores{
			Urgency:    urgency,
			Importance: NormalizeImportance(t.Importance),
			Effort:     NormalizeEffort(t.EstimatedHours),
			Dependency: g.Impact(t.ID),
		}
		results = append(results, e.score(t, subs, g, weights))
	}

	sortResults(results)

	cycles := g.Cycles()
	if cycles == nil {
		cycles = [][]string{}
	}
	if warnings == nil {
		warnings = []Warning{}
	}

	e.logger.Debug("batch analyzed",
		"strategy", resolved,
		"tasks", len(results),
		"cycles", len(cycles),
		"warnings", len(warnings),
	)

	return Analysis{
		Strategy: resolved,
		Weights:  weights,
		Warnings: warnings,
		Cycles:   cycles,
		Tasks:    results,
	}
}

// Suggest analyzes the batch and keeps the first limit scored tasks.
// A non-positive limit means DefaultSuggestLimit.
func (e *Engine) Suggest(ctx context.Context, tasks []Task, strategy string, limit int) Suggestions {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	a := e.Analyze(ctx, tasks, strategy)
	return TopSuggestions(a, limit)
}

// TopSuggestions keeps the first limit non-null results of a.
func TopSuggestions(a Analysis, limit int) Suggestions {
	top := make([]ScoreResult, 0, limit)
	for _, r := range a.Tasks {
		if len(top) == limit {
			break
		}
		if r.Score == nil {
			continue
		}
		top = append(top, r)
	}
	return Suggestions{
		Strategy:    a.Strategy,
		Suggestions: top,
		Cycles:      a.Cycles,
		Warnings:    a.Warnings,
	}
}

func (e *Engine) score(t NormalizedTask, subs Subscores, g *Graph, w WeightSet) ScoreResult {
	res := ScoreResult{
		ID:        t.ID,
		Title:     t.Title,
		Subscores: subs.rounded(),
	}
	if g.InCycle(t.ID) {
		res.Explanation = []string{cycleExplanation}
		return res
	}

	factors, raw := weigh(subs, w)
	score := round(clamp(raw*100, 0, 100), 2)
	res.Score = &score
	res.Factors = factors

	res.Explanation = []string{
		urgencyTier(subs.Urgency),
		"importance=" + strconv.Itoa(t.Importance),
		"estimated_hours=" + formatHours(t.EstimatedHours),
	}
	if n := g.Unblocked(t.ID); n > 0 {
		res.Explanation = append(res.Explanation, fmt.Sprintf("unblocks %d task(s)", n))
	}
	return res
}

func urgencyTier(u float64) string {
	switch {
	case u >= 1.0:
		return "High urgency (due soon or overdue)"
	case u > 0.5:
		return "Medium-high urgency"
	default:
		return "Low/No urgency"
	}
}

// formatHours renders whole hours with one decimal ("4.0") and keeps
// fractional hours as given ("2.5").
func formatHours(h float64) string {
	if h == float64(int64(h)) {
		return strconv.FormatFloat(h, 'f', 1, 64)
	}
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// normalizeTasks applies defaults, parses due dates, collapses duplicate
// dependency ids and resolves duplicate task ids (the later record replaces
// the earlier one in its original position).
func normalizeTasks(tasks []Task) ([]NormalizedTask, []Warning) {
	var warnings []Warning
	out := make([]NormalizedTask, 0, len(tasks))
	index := make(map[string]int, len(tasks))

	for _, t := range tasks {
		nt := NormalizedTask{
			ID:             t.ID,
			Title:          t.Title,
			Importance:     defaultImportance,
			EstimatedHours: defaultEstimatedHours,
		}
		if t.Importance != nil {
			nt.Importance = *t.Importance
		}
		if t.EstimatedHours != nil {
			nt.EstimatedHours = *t.EstimatedHours
		}
		if t.DueDate != "" {
			due, err := ParseDate(t.DueDate)
			if err != nil {
				warnings = append(warnings, Warning{
					ID:      t.ID,
					Kind:    WarnDueDate,
					Warning: "invalid due_date format, expected YYYY-MM-DD",
				})
			} else {
				nt.Due = &due
			}
		}
		nt.Dependencies = uniqueIDs(t.Dependencies)

		if i, dup := index[t.ID]; dup {
			warnings = append(warnings, Warning{
				ID:      t.ID,
				Kind:    WarnDuplicateID,
				Warning: "duplicate task id, later record wins",
			})
			out[i] = nt
			continue
		}
		index[t.ID] = len(out)
		out = append(out, nt)
	}
	return out, warnings
}

func uniqueIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// sortResults orders by descending score with null scores last; ties keep
// input order.
func sortResults(results []ScoreResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Score, results[j].Score
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}
