package modelmill

import "github.com/cockroachdb/errors"

// ReasoningEffort instructs a hosted model to allocate more or fewer internal
// computation steps before answering.
//
// It is a portable knob: each provider maps it onto its own wire
// representation (a `reasoning_effort` level, a thinking token budget, and so
// on). Providers with no equivalent ignore it.
type ReasoningEffort string

const (
	EffortLow    ReasoningEffort = "low"
	EffortMedium ReasoningEffort = "medium"
	EffortHigh   ReasoningEffort = "high"
)

// ParseReasoningEffort validates a string into a ReasoningEffort.
func ParseReasoningEffort(s string) (ReasoningEffort, error) {
	switch ReasoningEffort(s) {
	case EffortLow, EffortMedium, EffortHigh:
		return ReasoningEffort(s), nil
	default:
		return "", errors.Newf("invalid reasoning effort '%s': must be low, medium or high", s)
	}
}

func (e ReasoningEffort) String() string {
	return string(e)
}
