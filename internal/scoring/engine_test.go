package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/store"
)

func newTestEngine(adaptive *Adaptive) *Engine {
	return NewEngine(EngineConfig{
		Adaptive: adaptive,
		Calendar: NewFixedCalendar(),
		Clock:    FixedClock{Date: date("2024-03-04")},
	}, discardLogger())
}

func resultByID(t *testing.T, a Analysis, id string) ScoreResult {
	t.Helper()
	for _, r := range a.Tasks {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("task %q not in analysis", id)
	return ScoreResult{}
}

func TestAnalyzeOverdueRanksFirst(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "later", DueDate: "2999-01-01", Importance: intPtr(5), EstimatedHours: float64Ptr(2)},
		{ID: "overdue", DueDate: "2000-01-01", Importance: intPtr(5), EstimatedHours: float64Ptr(2)},
	}, StrategySmartBalance)

	require.Len(t, a.Tasks, 2)
	assert.Equal(t, "overdue", a.Tasks[0].ID)
	assert.Equal(t, 2.0, a.Tasks[0].Subscores.Urgency)
	assert.Equal(t, "High urgency (due soon or overdue)", a.Tasks[0].Explanation[0])
}

func TestAnalyzeFastestWinsPrefersQuickTask(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "big", Importance: intPtr(8), EstimatedHours: float64Ptr(40)},
		{ID: "quick", Importance: intPtr(5), EstimatedHours: float64Ptr(1)},
	}, StrategyFastestWins)

	require.Len(t, a.Tasks, 2)
	assert.Equal(t, "quick", a.Tasks[0].ID)
	assert.Equal(t, StrategyFastestWins, a.Strategy)
}

func TestAnalyzeCycleGetsNullScore(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "x", Dependencies: []string{"y"}},
		{ID: "y", Dependencies: []string{"z"}},
		{ID: "z", Dependencies: []string{"x"}},
		{ID: "free"},
	}, "")

	require.NotEmpty(t, a.Cycles)
	assert.ElementsMatch(t, []string{"x", "y", "z"}, a.Cycles[0][:3])

	for _, id := range []string{"x", "y", "z"} {
		r := resultByID(t, a, id)
		assert.Nil(t, r.Score, id)
		assert.Equal(t, []string{cycleExplanation}, r.Explanation)
		assert.Empty(t, r.Factors)
	}
	free := resultByID(t, a, "free")
	require.NotNil(t, free.Score)
	assert.NotContains(t, free.Explanation, cycleExplanation)

	// scored tasks sort ahead of null scores
	assert.Equal(t, "free", a.Tasks[0].ID)
}

func TestAnalyzeNullScoreIffInCycle(t *testing.T) {
	e := newTestEngine(nil)
	tasks := []Task{
		{ID: "a", Dependencies: []string{"b"}},
		{ID: "b", Dependencies: []string{"c"}},
		{ID: "c", Dependencies: []string{"b"}},
		{ID: "d", Dependencies: []string{"a"}},
	}
	a := e.Analyze(context.Background(), tasks, "")

	inCycle := map[string]bool{}
	for _, c := range a.Cycles {
		for _, id := range c {
			inCycle[id] = true
		}
	}
	for _, r := range a.Tasks {
		assert.Equal(t, inCycle[r.ID], r.Score == nil, r.ID)
		if r.Score != nil {
			assert.GreaterOrEqual(t, *r.Score, 0.0)
			assert.LessOrEqual(t, *r.Score, 100.0)
		}
	}
}

func TestAnalyzeDefaultsAndExplanation(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "plain", Title: "Write docs"},
	}, StrategySmartBalance)

	r := a.Tasks[0]
	assert.Equal(t, "Write docs", r.Title)
	assert.Equal(t, 0.1, r.Subscores.Urgency)
	assert.Equal(t, round(4.0/9.0, 4), r.Subscores.Importance)
	assert.Equal(t, []string{"Low/No urgency", "importance=5", "estimated_hours=4.0"}, r.Explanation)
	require.Len(t, r.Factors, 4)
	assert.Equal(t, FactorUrgency, r.Factors[0].Name)
}

func TestAnalyzeScoreValue(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "t", Importance: intPtr(10), EstimatedHours: float64Ptr(0)},
	}, StrategySmartBalance)

	// 0.35*0.1 + 0.35*1 + 0.15*1 + 0.15*0
	require.NotNil(t, a.Tasks[0].Score)
	assert.InDelta(t, 53.5, *a.Tasks[0].Score, 1e-9)
}

func TestAnalyzeUnblocksClause(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "base"},
		{ID: "mid", Dependencies: []string{"base"}},
		{ID: "top", Dependencies: []string{"mid", "mid"}},
	}, StrategyHighImpact)

	base := resultByID(t, a, "base")
	assert.Contains(t, base.Explanation, "unblocks 2 task(s)")
	assert.Equal(t, 1.0, base.Subscores.Dependency)

	mid := resultByID(t, a, "mid")
	assert.Contains(t, mid.Explanation, "unblocks 1 task(s)")
	assert.Equal(t, 0.5, mid.Subscores.Dependency)

	top := resultByID(t, a, "top")
	assert.Len(t, top.Explanation, 3)
}

func TestAnalyzeMediumUrgencyTier(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "soon", DueDate: "2024-03-11", EstimatedHours: float64Ptr(2.5)},
	}, "")
	r := a.Tasks[0]
	assert.Equal(t, "Medium-high urgency", r.Explanation[0])
	assert.Equal(t, "estimated_hours=2.5", r.Explanation[2])
}

func TestAnalyzeInvalidDueDate(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "bad", DueDate: "next tuesday"},
	}, "")

	require.Len(t, a.Warnings, 1)
	assert.Equal(t, "bad", a.Warnings[0].ID)
	assert.Equal(t, "invalid due_date format, expected YYYY-MM-DD", a.Warnings[0].Warning)
	assert.Equal(t, WarnDueDate, a.Warnings[0].Kind)
	assert.Equal(t, 0.1, a.Tasks[0].Subscores.Urgency)
}

func TestAnalyzeDuplicateIDLaterWins(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "a", Title: "first"},
		{ID: "b"},
		{ID: "a", Title: "second"},
	}, "")

	require.Len(t, a.Tasks, 2)
	assert.Equal(t, "second", resultByID(t, a, "a").Title)
	require.Len(t, a.Warnings, 1)
	assert.Equal(t, WarnDuplicateID, a.Warnings[0].Kind)
}

func TestAnalyzeUnknownStrategy(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{{ID: "a"}}, "yolo")

	assert.Equal(t, StrategySmartBalance, a.Strategy)
	require.Len(t, a.Warnings, 1)
	assert.Equal(t, WarnStrategy, a.Warnings[0].Kind)
	assert.Contains(t, a.Warnings[0].Warning, "yolo")
}

func TestAnalyzeEmptyBatch(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), nil, "")

	assert.Equal(t, StrategySmartBalance, a.Strategy)
	assert.NotNil(t, a.Tasks)
	assert.Empty(t, a.Tasks)
	assert.NotNil(t, a.Cycles)
	assert.NotNil(t, a.Warnings)
}

func TestAnalyzeCalendarFailureWarnsOnce(t *testing.T) {
	e := NewEngine(EngineConfig{
		Calendar: NewHolidayCalendar("ZZ"),
		Clock:    FixedClock{Date: date("2024-03-04")},
	}, discardLogger())

	a := e.Analyze(context.Background(), []Task{
		{ID: "a", DueDate: "2024-03-11"},
		{ID: "b", DueDate: "2024-03-12"},
		{ID: "c"},
	}, "")

	require.Len(t, a.Warnings, 1)
	assert.Equal(t, WarnCalendar, a.Warnings[0].Kind)
	assert.InDelta(t, round(1-7.0/30, 4), resultByID(t, a, "a").Subscores.Urgency, 1e-9)
}

type failingLedger struct{}

func (failingLedger) GetLedgerEntry(context.Context, string) (store.LedgerEntry, error) {
	return store.LedgerEntry{}, errors.New("disk on fire")
}

func (failingLedger) RecordFeedback(context.Context, *store.Feedback) (store.LedgerEntry, error) {
	return store.LedgerEntry{}, errors.New("disk on fire")
}

func TestAnalyzeLedgerFailureFallsBack(t *testing.T) {
	e := newTestEngine(NewAdaptive(failingLedger{}, DefaultAdaptiveConfig(), discardLogger()))
	a := e.Analyze(context.Background(), []Task{{ID: "a"}}, StrategyHighImpact)

	require.Len(t, a.Warnings, 1)
	assert.Equal(t, WarnLedger, a.Warnings[0].Kind)
	assert.Equal(t, DefaultPresets()[StrategyHighImpact].Normalize(), a.Weights)
	require.NotNil(t, a.Tasks[0].Score)
}

func TestAnalyzeStableOrderOnTies(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "1"}, {ID: "2"}, {ID: "3"},
	}, "")
	ids := []string{a.Tasks[0].ID, a.Tasks[1].ID, a.Tasks[2].ID}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestSuggestSkipsCyclesAndLimits(t *testing.T) {
	e := newTestEngine(nil)
	s := e.Suggest(context.Background(), []Task{
		{ID: "x", Dependencies: []string{"y"}, Importance: intPtr(10)},
		{ID: "y", Dependencies: []string{"x"}, Importance: intPtr(10)},
		{ID: "a", Importance: intPtr(9)},
		{ID: "b", Importance: intPtr(7)},
		{ID: "c", Importance: intPtr(3)},
		{ID: "d", Importance: intPtr(1)},
	}, StrategyHighImpact, 0)

	require.Len(t, s.Suggestions, DefaultSuggestLimit)
	assert.Equal(t, "a", s.Suggestions[0].ID)
	assert.Equal(t, "b", s.Suggestions[1].ID)
	assert.Equal(t, "c", s.Suggestions[2].ID)
	assert.NotEmpty(t, s.Cycles)
}

func TestSuggestFewerThanLimit(t *testing.T) {
	e := newTestEngine(nil)
	s := e.Suggest(context.Background(), []Task{{ID: "only"}}, "", 5)
	assert.Len(t, s.Suggestions, 1)
}

func TestNewEngineDefaultsUrgencyPolicy(t *testing.T) {
	e := NewEngine(EngineConfig{Clock: FixedClock{Date: date("2024-03-04")}}, discardLogger())
	a := e.Analyze(context.Background(), []Task{{ID: "a"}}, "")

	require.Len(t, a.Tasks, 1)
	assert.Equal(t, DefaultNoDeadlineUrgency, a.Tasks[0].Subscores.Urgency)
	require.NotNil(t, a.Tasks[0].Score)
	// 0.35*0.1 + 0.35*4/9 + 0.15*1/(1+ln 5) + 0.15*0
	assert.InDelta(t, 24.80, *a.Tasks[0].Score, 1e-9)

	partial := NewEngine(EngineConfig{
		Clock:   FixedClock{Date: date("2024-03-04")},
		Urgency: UrgencyPolicy{WindowDays: 10},
	}, discardLogger())
	a = partial.Analyze(context.Background(), []Task{{ID: "a"}}, "")
	assert.Equal(t, DefaultNoDeadlineUrgency, a.Tasks[0].Subscores.Urgency)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger := store.NewMemoryStore()
	adaptive := NewAdaptive(ledger, DefaultAdaptiveConfig(), discardLogger())
	for i := 0; i < DefaultWarmup+3; i++ {
		_, err := adaptive.RegisterFeedback(ctx, StrategyHighImpact, i%4 != 0)
		require.NoError(t, err)
	}

	e := newTestEngine(adaptive)
	batch := []Task{
		{ID: "x", Dependencies: []string{"y"}},
		{ID: "y", Dependencies: []string{"x"}},
		{ID: "base", DueDate: "2024-03-08", Importance: intPtr(7), EstimatedHours: float64Ptr(3)},
		{ID: "mid", Dependencies: []string{"base"}, EstimatedHours: float64Ptr(1.5)},
		{ID: "top", Dependencies: []string{"mid", "ghost"}, DueDate: "2024-02-20"},
		{ID: "bad", DueDate: "someday", Importance: intPtr(9)},
	}

	first := e.Analyze(ctx, batch, StrategyHighImpact)
	second := e.Analyze(ctx, batch, StrategyHighImpact)

	assert.Equal(t, first, second)
	require.Len(t, first.Warnings, 1)
	assert.NotEmpty(t, first.Cycles)
}
