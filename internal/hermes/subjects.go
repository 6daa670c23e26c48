package hermes

const (
	// SubjectFeedbackSubmit accepts FeedbackSubmitEvent payloads from
	// clients that report feedback over the bus instead of HTTP.
	SubjectFeedbackSubmit = "prioritizer.feedback.submit"

	StreamName   = "PRIORITIZER_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

// StreamSubjects are the outbound subjects persisted in StreamName.
// Submissions are not captured; they are consumed directly.
func StreamSubjects() []string {
	return []string{
		"prioritizer.analysis.*.completed",
		"prioritizer.feedback.*.registered",
	}
}

func SubjectAnalysisCompleted(strategy string) string {
	return "prioritizer.analysis." + strategy + ".completed"
}

func SubjectFeedbackRegistered(strategy string) string {
	return "prioritizer.feedback." + strategy + ".registered"
}
