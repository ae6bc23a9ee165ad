package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"retrace/internal/config"
	"retrace/internal/logging"
	"retrace/internal/mistake"
	"retrace/internal/store"
)

// ErrBatchInProgress is returned when another process already holds the
// batch lock.
var ErrBatchInProgress = errors.New("another analysis batch is already running")

// Analyzer produces a structured analysis for a captured mistake image.
type Analyzer interface {
	Analyze(ctx context.Context, imageRef string) (mistake.Analysis, error)
}

// Runner drains pending records through the analyzer, one at a time.
type Runner struct {
	cfg      *config.Config
	store    *store.Store
	analyzer Analyzer
	logger   *slog.Logger
	progress ProgressFunc

	timeout time.Duration
	delay   time.Duration
}

// Option customizes runner construction.
type Option func(*Runner)

// WithProgress registers a callback for incremental batch events.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithTimeout overrides the per-item analyzer timeout from the config.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// NewRunner builds a batch runner bound to the given store and analyzer.
func NewRunner(cfg *config.Config, st *store.Store, analyzer Analyzer, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if st == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if analyzer == nil {
		return nil, errors.New("pipeline: analyzer is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:      cfg,
		store:    st,
		analyzer: analyzer,
		logger:   logger.With(logging.String(logging.FieldComponent, "pipeline")),
		timeout:  time.Duration(cfg.Analyzer.TimeoutSeconds) * time.Second,
		delay:    time.Duration(cfg.Analyzer.BatchDelaySeconds) * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ProcessQueue runs one batch: reclaims records stranded mid-analysis by an
// earlier interrupted run, then drains the pending queue oldest first. Item
// failures are recorded on the item and do not stop the batch; the returned
// error reports setup problems or cancellation only.
func (r *Runner) ProcessQueue(ctx context.Context) (Summary, error) {
	lock := flock.New(r.cfg.BatchLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return Summary{}, ErrBatchInProgress
	}
	defer func() {
		_ = lock.Unlock()
	}()

	batchID := uuid.NewString()
	ctx = logging.WithBatchID(ctx, batchID)
	logger := logging.WithContext(ctx, r.logger)

	reclaimed, err := r.store.ReclaimStuckAnalyzing(ctx, r.cfg.User)
	if err != nil {
		return Summary{}, fmt.Errorf("reclaim interrupted records: %w", err)
	}
	if reclaimed > 0 {
		logger.Warn("requeued records from interrupted batch", logging.Int("count", int(reclaimed)))
	}

	records, err := r.store.ListPendingFIFO(ctx, r.cfg.User)
	if err != nil {
		return Summary{}, fmt.Errorf("list pending records: %w", err)
	}

	summary := Summary{Total: len(records), Reclaimed: int(reclaimed)}
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("total", summary.Total))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			logger.Info("batch cancelled",
				logging.Int("completed", i),
				logging.Int("total", summary.Total))
			return summary, err
		}

		itemCtx := logging.WithRecordID(ctx, rec.ID)
		itemErr := r.processItem(itemCtx, rec)
		message := "analyzed"
		if itemErr != nil {
			summary.Failed++
			message = itemErr.Error()
		} else {
			summary.Succeeded++
		}
		r.emit(Event{
			Completed: i + 1,
			Total:     summary.Total,
			RecordID:  rec.ID,
			Message:   message,
			Failed:    itemErr != nil,
		})

		if i < len(records)-1 {
			if err := sleepContext(ctx, r.delay); err != nil {
				return summary, err
			}
		}
	}

	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_finish"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// processItem advances one record through analysis. Any error leaves the
// record back in pending with an explanatory note.
func (r *Runner) processItem(ctx context.Context, rec *mistake.Record) error {
	logger := logging.WithContext(ctx, r.logger)

	if err := rec.BeginAnalysis(); err != nil {
		return err
	}
	if err := r.store.Update(ctx, rec); err != nil {
		if errors.Is(err, store.ErrStaleRecord) {
			logger.Warn("record changed concurrently, skipping", logging.Error(err))
		}
		return fmt.Errorf("mark analyzing: %w", err)
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	analysis, err := r.analyzer.Analyze(callCtx, rec.SourceImage)
	if err != nil {
		logger.Error("analysis failed", logging.Error(err))
		if failErr := rec.FailAnalysis(failureNote(err)); failErr != nil {
			return failErr
		}
		if updateErr := r.store.Update(ctx, rec); updateErr != nil {
			logger.Error("failed to persist analysis failure", logging.Error(updateErr))
			return fmt.Errorf("persist failure note: %w", updateErr)
		}
		return err
	}

	if err := rec.CompleteAnalysis(analysis); err != nil {
		return err
	}
	if err := r.store.Update(ctx, rec); err != nil {
		return fmt.Errorf("persist analysis result: %w", err)
	}
	logger.Info("analysis completed",
		logging.String("subject", string(rec.Subject)),
		logging.String("error_type", string(rec.ErrorType)))
	return nil
}

func (r *Runner) emit(event Event) {
	if r.progress != nil {
		r.progress(event)
	}
}

const maxNoteLength = 500

func failureNote(err error) string {
	note := err.Error()
	if len(note) > maxNoteLength {
		note = note[:maxNoteLength]
	}
	return note
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
