package scoring

import "math"

// Factor names, shared by subscores, weights and breakdowns.
const (
	FactorUrgency    = "urgency"
	FactorImportance = "importance"
	FactorEffort     = "effort"
	FactorDependency = "dependency"
)

// FactorResult captures one factor's contribution to the total score.
type FactorResult struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Reason   string  `json:"reason"`
}

// Subscores are the four normalized factor values of a task, rounded to 4 decimals.
type Subscores struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`
}

func (s Subscores) rounded() Subscores {
	return Subscores{
		Urgency:    round(s.Urgency, 4),
		Importance: round(s.Importance, 4),
		Effort:     round(s.Effort, 4),
		Dependency: round(s.Dependency, 4),
	}
}

// weigh applies w to the subscores and returns the per-factor breakdown
// together with the weighted sum.
func weigh(s Subscores, w WeightSet) ([]FactorResult, float64) {
	factors := []FactorResult{
		{Name: FactorUrgency, Score: s.Urgency, Weight: w.Urgency, Reason: urgencyTier(s.Urgency)},
		{Name: FactorImportance, Score: s.Importance, Weight: w.Importance, Reason: "linear over 1-10"},
		{Name: FactorEffort, Score: s.Effort, Weight: w.Effort, Reason: "log-damped estimated hours"},
		{Name: FactorDependency, Score: s.Dependency, Weight: w.Dependency, Reason: "share of max tasks unblocked"},
	}

	var total float64
	for i := range factors {
		factors[i].Weighted = factors[i].Score * factors[i].Weight
		total += factors[i].Weighted
	}
	for i := range factors {
		factors[i].Score = round(factors[i].Score, 4)
		factors[i].Weight = round(factors[i].Weight, 4)
		factors[i].Weighted = round(factors[i].Weighted, 4)
	}
	return factors, total
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
