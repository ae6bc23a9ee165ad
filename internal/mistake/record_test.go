package mistake_test

import (
	"errors"
	"testing"
	"time"

	"retrace/internal/mistake"
	"retrace/internal/srs"
)

var captureTime = time.Date(2026, time.February, 2, 8, 30, 0, 0, time.UTC)

func newPendingRecord(t *testing.T) *mistake.Record {
	t.Helper()
	rec, err := mistake.New("user-1", "images/quadratic.jpg", captureTime)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return rec
}

func sampleAnalysis() mistake.Analysis {
	return mistake.Analysis{
		QuestionText:  "Solve x^2 - 4x + 3 = 0",
		UserAnswer:    "x = 1",
		AIAnalysis:    "Only one root found; the product of roots was ignored.",
		Subject:       mistake.SubjectMath,
		ErrorType:     mistake.ErrorConcept,
		KnowledgeTags: []string{"quadratics", "roots"},
	}
}

func TestNewRequiresUserAndImage(t *testing.T) {
	if _, err := mistake.New("", "img.jpg", captureTime); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if _, err := mistake.New("user-1", "  ", captureTime); err == nil {
		t.Fatal("expected error for empty source image")
	}
}

func TestHappyPathLifecycle(t *testing.T) {
	rec := newPendingRecord(t)
	if rec.Status != mistake.StatusPending {
		t.Fatalf("new record status = %s, want pending", rec.Status)
	}

	if err := rec.BeginAnalysis(); err != nil {
		t.Fatalf("BeginAnalysis failed: %v", err)
	}
	if rec.Status != mistake.StatusAnalyzing {
		t.Fatalf("status = %s, want analyzing", rec.Status)
	}

	if err := rec.CompleteAnalysis(sampleAnalysis()); err != nil {
		t.Fatalf("CompleteAnalysis failed: %v", err)
	}
	if rec.Status != mistake.StatusReviewNeeded {
		t.Fatalf("status = %s, want review_needed", rec.Status)
	}
	if rec.AIAnalysis == "" || rec.QuestionText == "" {
		t.Fatal("analysis fields not populated")
	}

	if err := rec.Confirm(captureTime); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if rec.Status != mistake.StatusActive {
		t.Fatalf("status = %s, want active", rec.Status)
	}
	if rec.Memory.EaseFactor != srs.InitialEaseFactor || rec.Memory.Repetition != 0 {
		t.Fatalf("unexpected initial memory state: %+v", rec.Memory)
	}
	if !rec.Memory.DueAt(captureTime) {
		t.Fatal("confirmed record should be due immediately")
	}
}

func TestFailAnalysisClearsPartialFields(t *testing.T) {
	rec := newPendingRecord(t)
	if err := rec.BeginAnalysis(); err != nil {
		t.Fatalf("BeginAnalysis failed: %v", err)
	}
	// Simulate an earlier partial write surviving a crash.
	rec.QuestionText = "half-transcribed"
	rec.AIAnalysis = "half-analyzed"
	rec.Subject = mistake.SubjectMath

	if err := rec.FailAnalysis("analyzer timeout after 60s"); err != nil {
		t.Fatalf("FailAnalysis failed: %v", err)
	}
	if rec.Status != mistake.StatusPending {
		t.Fatalf("status = %s, want pending", rec.Status)
	}
	if rec.QuestionText != "" || rec.AIAnalysis != "" || rec.Subject != "" {
		t.Fatalf("partial analysis fields survived failure: %+v", rec)
	}
	if rec.ErrorNote != "analyzer timeout after 60s" {
		t.Fatalf("error note = %q", rec.ErrorNote)
	}

	// Failure must not dead-end the record.
	if err := rec.BeginAnalysis(); err != nil {
		t.Fatalf("retry BeginAnalysis failed: %v", err)
	}
	if rec.ErrorNote != "" {
		t.Fatal("error note should clear when analysis restarts")
	}
}

func TestInvalidTransitionsRejected(t *testing.T) {
	t.Run("pending to active", func(t *testing.T) {
		rec := newPendingRecord(t)
		if err := rec.Confirm(captureTime); !errors.Is(err, mistake.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("pending to review_needed", func(t *testing.T) {
		rec := newPendingRecord(t)
		if err := rec.CompleteAnalysis(sampleAnalysis()); !errors.Is(err, mistake.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("double begin", func(t *testing.T) {
		rec := newPendingRecord(t)
		if err := rec.BeginAnalysis(); err != nil {
			t.Fatalf("BeginAnalysis failed: %v", err)
		}
		if err := rec.BeginAnalysis(); !errors.Is(err, mistake.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("review on unconfirmed record", func(t *testing.T) {
		rec := newPendingRecord(t)
		if err := rec.ApplyReview(srs.NewMemoryState(captureTime)); !errors.Is(err, mistake.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestConfirmRequiresClassification(t *testing.T) {
	rec := newPendingRecord(t)
	if err := rec.BeginAnalysis(); err != nil {
		t.Fatalf("BeginAnalysis failed: %v", err)
	}
	analysis := sampleAnalysis()
	analysis.Subject = ""
	if err := rec.CompleteAnalysis(analysis); err != nil {
		t.Fatalf("CompleteAnalysis failed: %v", err)
	}
	if err := rec.Confirm(captureTime); !errors.Is(err, mistake.ErrIncompleteClassification) {
		t.Fatalf("expected ErrIncompleteClassification, got %v", err)
	}
	if rec.Status != mistake.StatusReviewNeeded {
		t.Fatalf("failed confirm must not change status, got %s", rec.Status)
	}

	rec.Subject = "astrology"
	rec.ErrorType = mistake.ErrorConcept
	if err := rec.Confirm(captureTime); !errors.Is(err, mistake.ErrIncompleteClassification) {
		t.Fatalf("expected ErrIncompleteClassification for unknown subject, got %v", err)
	}

	rec.Subject = mistake.SubjectMath
	if err := rec.Confirm(captureTime); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
}

func TestApplyReviewKeepsStatusActive(t *testing.T) {
	rec := newPendingRecord(t)
	if err := rec.BeginAnalysis(); err != nil {
		t.Fatalf("BeginAnalysis failed: %v", err)
	}
	if err := rec.CompleteAnalysis(sampleAnalysis()); err != nil {
		t.Fatalf("CompleteAnalysis failed: %v", err)
	}
	if err := rec.Confirm(captureTime); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	next, err := srs.Advance(rec.Memory, srs.RatingEasy, captureTime)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if err := rec.ApplyReview(next); err != nil {
		t.Fatalf("ApplyReview failed: %v", err)
	}
	if rec.Status != mistake.StatusActive {
		t.Fatalf("status = %s, want active", rec.Status)
	}
	if rec.Memory != next {
		t.Fatalf("memory state = %+v, want %+v", rec.Memory, next)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want mistake.Status
		ok   bool
	}{
		{"pending", mistake.StatusPending, true},
		{" Review_Needed ", mistake.StatusReviewNeeded, true},
		{"ACTIVE", mistake.StatusActive, true},
		{"deleted", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := mistake.ParseStatus(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCanTransitionTableIsClosed(t *testing.T) {
	legal := map[[2]mistake.Status]bool{
		{mistake.StatusPending, mistake.StatusAnalyzing}:      true,
		{mistake.StatusAnalyzing, mistake.StatusReviewNeeded}: true,
		{mistake.StatusAnalyzing, mistake.StatusPending}:      true,
		{mistake.StatusReviewNeeded, mistake.StatusActive}:    true,
		{mistake.StatusActive, mistake.StatusActive}:          true,
	}
	for _, from := range mistake.AllStatuses() {
		for _, to := range mistake.AllStatuses() {
			want := legal[[2]mistake.Status{from, to}]
			if got := mistake.CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	tags := mistake.NormalizeTags([]string{" pointers ", "Pointers", "", "stacks", "heaps"})
	want := []string{"heaps", "pointers", "stacks"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags = %v, want %v", tags, want)
		}
	}
}
