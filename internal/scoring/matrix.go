package scoring

// MatrixThreshold splits urgency and importance subscores into high/low.
const MatrixThreshold = 0.6

// Quadrant names.
const (
	QuadrantDo        = "do"
	QuadrantSchedule  = "schedule"
	QuadrantDelegate  = "delegate"
	QuadrantEliminate = "eliminate"
)

// Matrix buckets scored tasks into Eisenhower quadrants. Each bucket keeps
// the order of the analysis it was built from.
type Matrix struct {
	Strategy  string        `json:"strategy"`
	Do        []ScoreResult `json:"do"`
	Schedule  []ScoreResult `json:"schedule"`
	Delegate  []ScoreResult `json:"delegate"`
	Eliminate []ScoreResult `json:"eliminate"`
	Cycles    [][]string    `json:"cycles"`
	Warnings  []Warning     `json:"warnings"`
}

// Quadrant classifies one result: urgent and important is "do", important
// only is "schedule", urgent only is "delegate", neither is "eliminate".
func Quadrant(s Subscores) string {
	urgent := s.Urgency >= MatrixThreshold
	important := s.Importance >= MatrixThreshold
	switch {
	case urgent && important:
		return QuadrantDo
	case important:
		return QuadrantSchedule
	case urgent:
		return QuadrantDelegate
	default:
		return QuadrantEliminate
	}
}

// BuildMatrix buckets every task of a, including cycle members.
func BuildMatrix(a Analysis) Matrix {
	m := Matrix{
		Strategy:  a.Strategy,
		Do:        []ScoreResult{},
		Schedule:  []ScoreResult{},
		Delegate:  []ScoreResult{},
		Eliminate: []ScoreResult{},
		Cycles:    a.Cycles,
		Warnings:  a.Warnings,
	}
	for _, r := range a.Tasks {
		switch Quadrant(r.Subscores) {
		case QuadrantDo:
			m.Do = append(m.Do, r)
		case QuadrantSchedule:
			m.Schedule = append(m.Schedule, r)
		case QuadrantDelegate:
			m.Delegate = append(m.Delegate, r)
		default:
			m.Eliminate = append(m.Eliminate, r)
		}
	}
	return m
}
