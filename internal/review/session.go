package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"retrace/internal/config"
	"retrace/internal/logging"
	"retrace/internal/mistake"
	"retrace/internal/srs"
	"retrace/internal/store"
)

// ErrSessionFinished is returned by Rate once every queued record has been
// reviewed.
var ErrSessionFinished = errors.New("review session already finished")

// Summary tallies the outcome of a session.
type Summary struct {
	Total  int
	Rated  int
	Passed int
	Lapsed int
}

// Session walks a snapshot of due records, persisting one rating at a time.
type Session struct {
	store  *store.Store
	logger *slog.Logger

	queue   []*mistake.Record
	index   int
	summary Summary
}

// StartSession pulls due records for the configured user, soonest due first,
// capped by the configured session limit. An empty queue is a valid session;
// callers check Done before prompting.
func StartSession(ctx context.Context, st *store.Store, cfg *config.Config, logger *slog.Logger, now time.Time) (*Session, error) {
	if st == nil {
		return nil, errors.New("review: store is required")
	}
	if cfg == nil {
		return nil, errors.New("review: config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	queue, err := st.DueForReview(ctx, cfg.User, now, cfg.Review.SessionLimit)
	if err != nil {
		return nil, fmt.Errorf("load due records: %w", err)
	}

	logger = logger.With(logging.String(logging.FieldComponent, "review"))
	logger.Info("session started",
		logging.String(logging.FieldUserID, cfg.User),
		logging.Int("queued", len(queue)))

	return &Session{
		store:   st,
		logger:  logger,
		queue:   queue,
		summary: Summary{Total: len(queue)},
	}, nil
}

// Current returns the record awaiting a rating, or nil when the session is
// finished.
func (s *Session) Current() *mistake.Record {
	if s.Done() {
		return nil
	}
	return s.queue[s.index]
}

// Remaining reports how many records still need a rating, including the
// current one.
func (s *Session) Remaining() int {
	return len(s.queue) - s.index
}

// Done reports whether every queued record has been rated.
func (s *Session) Done() bool {
	return s.index >= len(s.queue)
}

// Rate scores the current record and persists the advanced memory state
// before moving on. An invalid rating or a persistence failure leaves the
// session position unchanged so the caller can retry.
func (s *Session) Rate(ctx context.Context, quality srs.Rating, now time.Time) error {
	if s.Done() {
		return ErrSessionFinished
	}
	rec := s.queue[s.index]

	next, err := srs.Advance(rec.Memory, quality, now)
	if err != nil {
		return err
	}
	prev := rec.Memory
	if err := rec.ApplyReview(next); err != nil {
		return err
	}
	if err := s.store.Update(ctx, rec); err != nil {
		rec.Memory = prev
		return fmt.Errorf("persist review: %w", err)
	}

	s.index++
	s.summary.Rated++
	if quality.Passing() {
		s.summary.Passed++
	} else {
		s.summary.Lapsed++
	}
	s.logger.Info("record rated",
		logging.String(logging.FieldRecordID, rec.ID),
		logging.String("rating", quality.String()),
		logging.Int("interval_days", next.IntervalDays))
	return nil
}

// Summary returns the tallies accumulated so far.
func (s *Session) Summary() Summary {
	return s.summary
}
