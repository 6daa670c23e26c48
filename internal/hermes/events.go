package hermes

import "time"

type AnalysisCompletedEvent struct {
	AnalysisID string    `json:"analysis_id"`
	Strategy   string    `json:"strategy"`
	TaskCount  int       `json:"task_count"`
	CycleCount int       `json:"cycle_count"`
	Warnings   int       `json:"warnings"`
	TopTaskIDs []string  `json:"top_task_ids,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

type FeedbackSubmitEvent struct {
	TaskID     string `json:"task_id,omitempty"`
	Strategy   string `json:"strategy"`
	WasHelpful bool   `json:"was_helpful"`
}

type FeedbackRegisteredEvent struct {
	FeedbackID string    `json:"feedback_id"`
	TaskID     string    `json:"task_id,omitempty"`
	Strategy   string    `json:"strategy"`
	WasHelpful bool      `json:"was_helpful"`
	Positive   int       `json:"positive"`
	Total      int       `json:"total"`
	Timestamp  time.Time `json:"timestamp"`
}
