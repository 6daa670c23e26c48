package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadrant(t *testing.T) {
	tests := []struct {
		name string
		s    Subscores
		want string
	}{
		{"urgent and important", Subscores{Urgency: 1.2, Importance: 0.9}, QuadrantDo},
		{"important only", Subscores{Urgency: 0.1, Importance: 0.6}, QuadrantSchedule},
		{"urgent only", Subscores{Urgency: 0.6, Importance: 0.2}, QuadrantDelegate},
		{"neither", Subscores{Urgency: 0.59, Importance: 0.59}, QuadrantEliminate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quadrant(tt.s))
		})
	}
}

func TestBuildMatrix(t *testing.T) {
	e := newTestEngine(nil)
	a := e.Analyze(context.Background(), []Task{
		{ID: "fire", DueDate: "2024-03-01", Importance: intPtr(10)},
		{ID: "plan", Importance: intPtr(9)},
		{ID: "noise", DueDate: "2024-03-04", Importance: intPtr(2)},
		{ID: "idle", Importance: intPtr(1)},
	}, "")

	m := BuildMatrix(a)
	require.Len(t, m.Do, 1)
	assert.Equal(t, "fire", m.Do[0].ID)
	require.Len(t, m.Schedule, 1)
	assert.Equal(t, "plan", m.Schedule[0].ID)
	require.Len(t, m.Delegate, 1)
	assert.Equal(t, "noise", m.Delegate[0].ID)
	require.Len(t, m.Eliminate, 1)
	assert.Equal(t, "idle", m.Eliminate[0].ID)
	assert.Equal(t, a.Strategy, m.Strategy)
}
