package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Strategy names for the built-in presets.
const (
	StrategyFastestWins    = "fastest_wins"
	StrategyHighImpact     = "high_impact"
	StrategyDeadlineDriven = "deadline_driven"
	StrategySmartBalance   = "smart_balance"

	DefaultStrategy = StrategySmartBalance
)

const weightSumTolerance = 0.001

// WeightSet defines the fraction of a task's score attributable to each factor.
// All weights must sum to 1.0 (±0.001 tolerance).
type WeightSet struct {
	Urgency    float64 `json:"urgency" yaml:"urgency"`
	Importance float64 `json:"importance" yaml:"importance"`
	Effort     float64 `json:"effort" yaml:"effort"`
	Dependency float64 `json:"dependency" yaml:"dependency"`
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.Urgency + w.Importance + w.Effort + w.Dependency
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}

// Normalize scales the weights so they sum to 1.0. An all-zero set is
// returned unchanged.
func (w WeightSet) Normalize() WeightSet {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	return WeightSet{
		Urgency:    w.Urgency / sum,
		Importance: w.Importance / sum,
		Effort:     w.Effort / sum,
		Dependency: w.Dependency / sum,
	}
}

func (w WeightSet) asList() []float64 {
	return []float64{w.Urgency, w.Importance, w.Effort, w.Dependency}
}

// DefaultPresets returns the built-in weighting strategies.
func DefaultPresets() map[string]WeightSet {
	return map[string]WeightSet{
		StrategyFastestWins:    {Effort: 0.6, Importance: 0.2, Urgency: 0.1, Dependency: 0.1},
		StrategyHighImpact:     {Importance: 0.7, Dependency: 0.15, Urgency: 0.1, Effort: 0.05},
		StrategyDeadlineDriven: {Urgency: 0.7, Dependency: 0.15, Importance: 0.1, Effort: 0.05},
		StrategySmartBalance:   {Urgency: 0.35, Importance: 0.35, Dependency: 0.15, Effort: 0.15},
	}
}

// Strategies is a fixed registry of named weight presets with a fallback.
type Strategies struct {
	presets  map[string]WeightSet
	fallback string
}

// NewStrategies builds a registry from presets. Every preset is validated and
// the fallback must name one of them.
func NewStrategies(presets map[string]WeightSet, fallback string) (*Strategies, error) {
	if len(presets) == 0 {
		return nil, fmt.Errorf("no strategies configured")
	}
	copied := make(map[string]WeightSet, len(presets))
	for name, w := range presets {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("strategy %q: %w", name, err)
		}
		copied[name] = w
	}
	if _, ok := copied[fallback]; !ok {
		return nil, fmt.Errorf("fallback strategy %q is not defined", fallback)
	}
	return &Strategies{presets: copied, fallback: fallback}, nil
}

// DefaultStrategies returns the registry of built-in presets, falling back to
// smart_balance.
func DefaultStrategies() *Strategies {
	s, err := NewStrategies(DefaultPresets(), DefaultStrategy)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the weights for name and the strategy actually used.
// Unknown names resolve to the fallback with ok=false.
func (s *Strategies) Lookup(name string) (WeightSet, string, bool) {
	if w, ok := s.presets[name]; ok {
		return w, name, true
	}
	return s.presets[s.fallback], s.fallback, false
}

// Names returns the registered strategy names, sorted.
func (s *Strategies) Names() []string {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fallback returns the name used for unknown strategies.
func (s *Strategies) Fallback() string {
	return s.fallback
}
