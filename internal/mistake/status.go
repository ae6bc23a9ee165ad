package mistake

import "strings"

// Status represents the lifecycle of a mistake record.
type Status string

const (
	// StatusPending marks a captured record that has not been analyzed.
	StatusPending Status = "pending"
	// StatusAnalyzing marks a record whose AI analysis call is in flight.
	StatusAnalyzing Status = "analyzing"
	// StatusReviewNeeded marks an analyzed record awaiting human confirmation.
	StatusReviewNeeded Status = "review_needed"
	// StatusActive marks a confirmed record governed by the scheduler.
	StatusActive Status = "active"
)

var allStatuses = []Status{
	StatusPending,
	StatusAnalyzing,
	StatusReviewNeeded,
	StatusActive,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

type statusTransition struct {
	from Status
	to   Status
}

// legalTransitions is the closed transition table. Submission for analysis,
// analysis success, analysis failure (back to the queue), human confirmation,
// and the in-place re-schedule of an active record. Nothing else.
var legalTransitions = []statusTransition{
	{from: StatusPending, to: StatusAnalyzing},
	{from: StatusAnalyzing, to: StatusReviewNeeded},
	{from: StatusAnalyzing, to: StatusPending},
	{from: StatusReviewNeeded, to: StatusActive},
	{from: StatusActive, to: StatusActive},
}

var transitionSet = func() map[statusTransition]struct{} {
	set := make(map[statusTransition]struct{}, len(legalTransitions))
	for _, tr := range legalTransitions {
		set[tr] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	_, ok := transitionSet[statusTransition{from: from, to: to}]
	return ok
}

// IntakeStatuses returns the statuses that count as "awaiting processing"
// for queue summaries: captured, in-flight, and awaiting confirmation.
func IntakeStatuses() []Status {
	return []Status{StatusPending, StatusAnalyzing, StatusReviewNeeded}
}

// IsIntake reports whether the record still sits ahead of human confirmation.
func (r Record) IsIntake() bool {
	switch r.Status {
	case StatusPending, StatusAnalyzing, StatusReviewNeeded:
		return true
	default:
		return false
	}
}
