package api

import (
	"net/http"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
)

type StrategiesHandler struct {
	strategies *scoring.Strategies
}

func NewStrategiesHandler(s *scoring.Strategies) *StrategiesHandler {
	return &StrategiesHandler{strategies: s}
}

// List returns the preset weights: GET /api/strategies.
func (h *StrategiesHandler) List(w http.ResponseWriter, r *http.Request) {
	presets := make(map[string]scoring.WeightSet, len(h.strategies.Names()))
	for _, name := range h.strategies.Names() {
		ws, _, _ := h.strategies.Lookup(name)
		presets[name] = ws
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default":    h.strategies.Fallback(),
		"strategies": presets,
	})
}
