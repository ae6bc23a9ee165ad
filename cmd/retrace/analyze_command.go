package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"retrace/internal/config"
	"retrace/internal/pipeline"
	"retrace/internal/store"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run AI analysis over all pending mistakes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeBatch(cmd, ctx)
		},
	}
}

func runAnalyzeBatch(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	client, err := ctx.newAnalyzer()
	if err != nil {
		return err
	}

	return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
		out := cmd.OutOrStdout()
		reporter := newBatchReporter(cmd)
		defer reporter.stop()

		runner, err := pipeline.NewRunner(cfg, st, client, logger, pipeline.WithProgress(reporter.handle))
		if err != nil {
			return err
		}
		summary, err := runner.ProcessQueue(cmd.Context())
		reporter.stop()
		if err != nil {
			if errors.Is(err, pipeline.ErrBatchInProgress) {
				return fmt.Errorf("an analysis batch is already running; wait for it to finish")
			}
			return err
		}

		if summary.Total == 0 {
			fmt.Fprintln(out, "Nothing to analyze.")
			return nil
		}
		fmt.Fprintf(out, "Analyzed %d of %d record(s)", summary.Succeeded, summary.Total)
		if summary.Failed > 0 {
			fmt.Fprintf(out, ", %d failed (left pending with an error note)", summary.Failed)
		}
		fmt.Fprintln(out)
		if summary.Succeeded > 0 {
			fmt.Fprintln(out, "Run `retrace list --status review_needed` to confirm the results.")
		}
		return nil
	})
}

// batchReporter renders batch progress: a live bar on a terminal, plain
// per-item lines otherwise.
type batchReporter struct {
	cmd     *cobra.Command
	writer  progress.Writer
	tracker *progress.Tracker
	stopped bool
}

func newBatchReporter(cmd *cobra.Command) *batchReporter {
	r := &batchReporter{cmd: cmd}
	if file, ok := cmd.OutOrStdout().(*os.File); ok && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())) {
		pw := progress.NewWriter()
		pw.SetOutputWriter(file)
		pw.SetAutoStop(false)
		pw.SetTrackerLength(25)
		pw.SetUpdateFrequency(100 * time.Millisecond)
		pw.Style().Visibility.ETA = false
		r.writer = pw
		go pw.Render()
	}
	return r
}

func (r *batchReporter) handle(event pipeline.Event) {
	if r.writer != nil {
		if r.tracker == nil {
			r.tracker = &progress.Tracker{
				Message: "Analyzing mistakes",
				Total:   int64(event.Total),
				Units:   progress.UnitsDefault,
			}
			r.writer.AppendTracker(r.tracker)
		}
		r.tracker.SetValue(int64(event.Completed))
		return
	}

	status := "ok"
	if event.Failed {
		status = "failed: " + event.Message
	}
	fmt.Fprintf(r.cmd.OutOrStdout(), "[%d/%d] %s %s\n", event.Completed, event.Total, shortID(event.RecordID), status)
}

func (r *batchReporter) stop() {
	if r.writer == nil || r.stopped {
		return
	}
	r.stopped = true
	if r.tracker != nil {
		r.tracker.MarkAsDone()
	}
	r.writer.Stop()
	for r.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
