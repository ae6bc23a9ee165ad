package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"retrace/internal/config"
	"retrace/internal/logging"
	"retrace/internal/mistake"
	"retrace/internal/srs"
	"retrace/internal/store"
	"retrace/internal/testsupport"
)

func seedActive(t *testing.T, st *store.Store, cfg *config.Config, now time.Time, count int) []*mistake.Record {
	t.Helper()
	records := make([]*mistake.Record, 0, count)
	for i := 0; i < count; i++ {
		rec, err := mistake.New(cfg.User, "img.jpg", now.Add(-time.Hour))
		if err != nil {
			t.Fatalf("new record: %v", err)
		}
		if err := rec.BeginAnalysis(); err != nil {
			t.Fatalf("begin analysis: %v", err)
		}
		if err := rec.CompleteAnalysis(mistake.Analysis{
			QuestionText: "q",
			Subject:      mistake.SubjectMath,
			ErrorType:    mistake.ErrorConcept,
			AIAnalysis:   "a",
		}); err != nil {
			t.Fatalf("complete analysis: %v", err)
		}
		// Stagger due times so queue order is deterministic.
		if err := rec.Confirm(now.Add(time.Duration(i-count) * time.Minute)); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if err := st.Insert(context.Background(), rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
		records = append(records, rec)
	}
	return records
}

func TestSessionRatesAndPersistsEachRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	now := time.Now().UTC()
	records := seedActive(t, st, cfg, now, 2)

	session, err := StartSession(context.Background(), st, cfg, logging.NewNop(), now)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.Done() || session.Remaining() != 2 {
		t.Fatalf("expected 2 queued records, remaining = %d", session.Remaining())
	}
	if session.Current().ID != records[0].ID {
		t.Fatalf("queue order: got %s first, want %s", session.Current().ID, records[0].ID)
	}

	if err := session.Rate(context.Background(), srs.RatingEasy, now); err != nil {
		t.Fatalf("rate first: %v", err)
	}

	// The first rating is durable even if the session is abandoned here.
	got, err := st.GetByID(context.Background(), records[0].ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.Memory.Repetition != 1 || got.Memory.IntervalDays != 1 {
		t.Fatalf("persisted memory = %+v, want repetition 1 interval 1", got.Memory)
	}
	if got.Memory.EaseFactor != 2.6 {
		t.Fatalf("persisted ease = %v, want 2.6", got.Memory.EaseFactor)
	}

	if err := session.Rate(context.Background(), srs.RatingBlackout, now); err != nil {
		t.Fatalf("rate second: %v", err)
	}
	if !session.Done() {
		t.Fatal("session should be finished")
	}
	summary := session.Summary()
	if summary.Total != 2 || summary.Rated != 2 || summary.Passed != 1 || summary.Lapsed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if err := session.Rate(context.Background(), srs.RatingEasy, now); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
}

func TestSessionInvalidRatingLeavesQueueUntouched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	now := time.Now().UTC()
	records := seedActive(t, st, cfg, now, 1)

	session, err := StartSession(context.Background(), st, cfg, logging.NewNop(), now)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := session.Rate(context.Background(), srs.Rating(9), now); !errors.Is(err, srs.ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if session.Remaining() != 1 || session.Current().ID != records[0].ID {
		t.Fatal("invalid rating must not advance the session")
	}

	got, err := st.GetByID(context.Background(), records[0].ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.Memory.Repetition != 0 {
		t.Fatalf("memory advanced despite invalid rating: %+v", got.Memory)
	}
}

func TestSessionHonorsLimitAndDueOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSessionLimit(2))
	st := testsupport.MustOpenStore(t, cfg)
	now := time.Now().UTC()
	records := seedActive(t, st, cfg, now, 3)

	session, err := StartSession(context.Background(), st, cfg, logging.NewNop(), now)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.Remaining() != 2 {
		t.Fatalf("remaining = %d, want limit 2", session.Remaining())
	}
	// Soonest due first.
	if session.Current().ID != records[0].ID {
		t.Fatalf("got %s first, want %s", session.Current().ID, records[0].ID)
	}
}

func TestSessionEmptyQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	session, err := StartSession(context.Background(), st, cfg, logging.NewNop(), time.Now().UTC())
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if !session.Done() || session.Current() != nil || session.Remaining() != 0 {
		t.Fatal("empty queue should start finished")
	}
}

func TestSessionSkipsFutureDueRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	now := time.Now().UTC()

	rec, err := mistake.New(cfg.User, "img.jpg", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if err := rec.BeginAnalysis(); err != nil {
		t.Fatalf("begin analysis: %v", err)
	}
	if err := rec.CompleteAnalysis(mistake.Analysis{
		QuestionText: "q",
		Subject:      mistake.SubjectMath,
		ErrorType:    mistake.ErrorConcept,
		AIAnalysis:   "a",
	}); err != nil {
		t.Fatalf("complete analysis: %v", err)
	}
	if err := rec.Confirm(now.Add(24 * time.Hour)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := st.Insert(context.Background(), rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	session, err := StartSession(context.Background(), st, cfg, logging.NewNop(), now)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if !session.Done() {
		t.Fatalf("record due at %v should not be queued at %v", rec.Memory.Due, now)
	}
}
