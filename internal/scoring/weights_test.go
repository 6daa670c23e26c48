package scoring

import (
	"io"
	"log/slog"
	"math"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func float64Ptr(v float64) *float64 { return &v }

func TestDefaultPresetsSumToOne(t *testing.T) {
	for name, w := range DefaultPresets() {
		if err := w.Validate(); err != nil {
			t.Errorf("%s invalid: %v", name, err)
		}
		if math.Abs(w.Sum()-1.0) > 0.001 {
			t.Errorf("%s sums to %f, expected 1.0", name, w.Sum())
		}
	}
}

func TestWeightSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		w       WeightSet
		wantErr bool
	}{
		{"exact", WeightSet{Urgency: 0.25, Importance: 0.25, Effort: 0.25, Dependency: 0.25}, false},
		{"within tolerance", WeightSet{Urgency: 0.3335, Importance: 0.3335, Effort: 0.3335}, false},
		{"too small", WeightSet{Urgency: 0.5, Importance: 0.4}, true},
		{"negative", WeightSet{Urgency: 1.2, Importance: -0.2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWeightSetNormalize(t *testing.T) {
	w := WeightSet{Urgency: 2, Importance: 1, Effort: 1}.Normalize()
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("normalized sum = %f", w.Sum())
	}
	if math.Abs(w.Urgency-0.5) > 1e-9 {
		t.Errorf("urgency = %f, expected 0.5", w.Urgency)
	}

	zero := WeightSet{}.Normalize()
	if zero != (WeightSet{}) {
		t.Errorf("all-zero set changed: %+v", zero)
	}
}

func TestStrategiesLookup(t *testing.T) {
	s := DefaultStrategies()

	w, name, ok := s.Lookup(StrategyFastestWins)
	if !ok || name != StrategyFastestWins {
		t.Fatalf("Lookup(fastest_wins) = %q, %v", name, ok)
	}
	if w.Effort != 0.6 {
		t.Errorf("fastest_wins effort = %f, expected 0.6", w.Effort)
	}

	w, name, ok = s.Lookup("nonsense")
	if ok {
		t.Error("expected ok=false for unknown strategy")
	}
	if name != StrategySmartBalance {
		t.Errorf("fallback = %q, expected smart_balance", name)
	}
	if w != DefaultPresets()[StrategySmartBalance] {
		t.Errorf("fallback weights = %+v", w)
	}
}

func TestStrategiesNames(t *testing.T) {
	got := DefaultStrategies().Names()
	want := []string{StrategyDeadlineDriven, StrategyFastestWins, StrategyHighImpact, StrategySmartBalance}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}

func TestNewStrategiesRejectsInvalid(t *testing.T) {
	if _, err := NewStrategies(nil, DefaultStrategy); err == nil {
		t.Error("expected error for empty presets")
	}
	bad := map[string]WeightSet{"lopsided": {Urgency: 0.9, Importance: 0.9}}
	if _, err := NewStrategies(bad, "lopsided"); err == nil {
		t.Error("expected error for weights not summing to 1")
	}
	if _, err := NewStrategies(DefaultPresets(), "missing"); err == nil {
		t.Error("expected error for undefined fallback")
	}
}
