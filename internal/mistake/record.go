package mistake

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"retrace/internal/srs"
)

// Record represents a captured mistake persisted in SQLite.
type Record struct {
	ID     string
	UserID string

	// Capture data.
	SourceImage        string
	QuestionText       string
	UserAnswer         string
	CorrectAnswer      string
	CorrectAnswerImage string

	// Classification, finalized at confirmation time.
	Subject       Subject
	ErrorType     ErrorType
	KnowledgeTags []string

	// AIAnalysis is empty until an analysis call succeeds.
	AIAnalysis string

	Status Status
	Memory srs.MemoryState

	// ErrorNote records the most recent analysis failure for visibility.
	ErrorNote string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Analysis is the structured result of one Analyzer call.
type Analysis struct {
	QuestionText  string
	UserAnswer    string
	AIAnalysis    string
	Subject       Subject
	ErrorType     ErrorType
	KnowledgeTags []string
}

// New creates a freshly captured record awaiting analysis.
func New(userID, sourceImage string, now time.Time) (*Record, error) {
	userID = strings.TrimSpace(userID)
	sourceImage = strings.TrimSpace(sourceImage)
	if userID == "" {
		return nil, fmt.Errorf("new record: user id required")
	}
	if sourceImage == "" {
		return nil, fmt.Errorf("new record: source image required")
	}
	now = now.UTC()
	return &Record{
		ID:          uuid.NewString(),
		UserID:      userID,
		SourceImage: sourceImage,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// BeginAnalysis marks the record's AI call as in flight.
func (r *Record) BeginAnalysis() error {
	if !CanTransition(r.Status, StatusAnalyzing) {
		return transitionError(r.Status, StatusAnalyzing)
	}
	r.Status = StatusAnalyzing
	r.ErrorNote = ""
	return nil
}

// CompleteAnalysis stores a successful analysis result and moves the record
// to review_needed. The fields land together with the transition so a
// review_needed record always carries a full analysis.
func (r *Record) CompleteAnalysis(result Analysis) error {
	if !CanTransition(r.Status, StatusReviewNeeded) {
		return transitionError(r.Status, StatusReviewNeeded)
	}
	r.Status = StatusReviewNeeded
	r.QuestionText = strings.TrimSpace(result.QuestionText)
	r.UserAnswer = strings.TrimSpace(result.UserAnswer)
	r.AIAnalysis = strings.TrimSpace(result.AIAnalysis)
	r.Subject = result.Subject
	r.ErrorType = result.ErrorType
	r.KnowledgeTags = NormalizeTags(result.KnowledgeTags)
	r.ErrorNote = ""
	return nil
}

// FailAnalysis returns the record to the queue after a failed AI call.
// Analysis fields populated by an earlier partial attempt are cleared so a
// pending record never carries half-filled results.
func (r *Record) FailAnalysis(note string) error {
	if !CanTransition(r.Status, StatusPending) {
		return transitionError(r.Status, StatusPending)
	}
	r.Status = StatusPending
	r.QuestionText = ""
	r.UserAnswer = ""
	r.AIAnalysis = ""
	r.Subject = ""
	r.ErrorType = ""
	r.KnowledgeTags = nil
	r.ErrorNote = strings.TrimSpace(note)
	return nil
}

// Confirm finalizes the human-reviewed record and enters the review rotation.
// Classification must be complete; the memory state starts at repetition 0
// with the default ease and is due immediately.
func (r *Record) Confirm(now time.Time) error {
	if !CanTransition(r.Status, StatusActive) {
		return transitionError(r.Status, StatusActive)
	}
	if r.Subject == "" || r.ErrorType == "" {
		return fmt.Errorf("%w: subject and error type must be set", ErrIncompleteClassification)
	}
	if _, ok := ParseSubject(string(r.Subject)); !ok {
		return fmt.Errorf("%w: unknown subject %q", ErrIncompleteClassification, r.Subject)
	}
	if _, ok := ParseErrorType(string(r.ErrorType)); !ok {
		return fmt.Errorf("%w: unknown error type %q", ErrIncompleteClassification, r.ErrorType)
	}
	r.Status = StatusActive
	r.Memory = srs.NewMemoryState(now)
	r.ErrorNote = ""
	return nil
}

// ApplyReview persists a scheduler outcome on an active record. The status
// does not change; only the memory state advances.
func (r *Record) ApplyReview(next srs.MemoryState) error {
	if r.Status != StatusActive {
		return transitionError(r.Status, StatusActive)
	}
	r.Memory = next
	return nil
}
