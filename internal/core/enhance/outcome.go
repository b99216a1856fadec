package enhance

// Outcome is the terminal state of an enhancement session.
// ENUM(completed, timed_out, trigger_failed, poll_failed, cancelled).
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeTimedOut      Outcome = "timed_out"
	OutcomeTriggerFailed Outcome = "trigger_failed"
	OutcomePollFailed    Outcome = "poll_failed"
	OutcomeCancelled     Outcome = "cancelled"
)

// Text returns the human readable status line for the outcome.
func (o Outcome) Text() string {
	switch o {
	case OutcomeCompleted:
		return "AI enhancement complete"
	case OutcomeTimedOut:
		return "AI enhancement timed out (state preserved)"
	case OutcomeTriggerFailed:
		return "AI request failed"
	case OutcomePollFailed:
		return "status check failed, polling stopped"
	case OutcomeCancelled:
		return "AI enhancement cancelled"
	default:
		return string(o)
	}
}

// IsFailure reports whether the outcome represents an error.
// A timeout keeps the last fetched state and is not a failure.
func (o Outcome) IsFailure() bool {
	return o == OutcomeTriggerFailed || o == OutcomePollFailed
}
