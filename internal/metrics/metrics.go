// Package metrics holds the Prometheus collectors served on the metrics port.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Madarauchiha195/Singularium-Internship-Assignment/internal/scoring"
)

var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prioritizer_analyses_total",
		Help: "Task batches scored, by resolved strategy.",
	}, []string{"strategy"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prioritizer_analysis_duration_seconds",
		Help:    "Time spent scoring one batch.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	TasksScored = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prioritizer_batch_size",
		Help:    "Tasks per scored batch.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	CycleTasksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prioritizer_cycle_tasks_total",
		Help: "Tasks left unscored because they sit in a dependency cycle.",
	})

	FeedbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prioritizer_feedback_total",
		Help: "Feedback events registered.",
	}, []string{"strategy", "helpful"})

	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prioritizer_fallbacks_total",
		Help: "Recoverable fallbacks taken while scoring, by kind.",
	}, []string{"kind"})
)

// ObserveAnalysis records one completed scoring call.
func ObserveAnalysis(a scoring.Analysis, elapsed time.Duration) {
	AnalysesTotal.WithLabelValues(a.Strategy).Inc()
	AnalysisDuration.Observe(elapsed.Seconds())
	TasksScored.Observe(float64(len(a.Tasks)))

	var unscored int
	for _, t := range a.Tasks {
		if t.Score == nil {
			unscored++
		}
	}
	CycleTasksTotal.Add(float64(unscored))

	for _, w := range a.Warnings {
		if w.Kind != "" {
			FallbacksTotal.WithLabelValues(w.Kind).Inc()
		}
	}
}

// ObserveFeedback records one registered feedback event.
func ObserveFeedback(strategy string, helpful bool) {
	FeedbackTotal.WithLabelValues(strategy, strconv.FormatBool(helpful)).Inc()
}
