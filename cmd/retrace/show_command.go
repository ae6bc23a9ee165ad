package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"retrace/internal/config"
	"retrace/internal/mistake"
	"retrace/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show the full detail of one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				rec, err := resolveRecord(cmd, st, cfg, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %s\n", rec.ID)
				fmt.Fprintf(out, "Status:      %s\n", statusLabel(rec.Status))
				fmt.Fprintf(out, "Captured:    %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Fprintf(out, "Image:       %s\n", rec.SourceImage)
				if rec.CorrectAnswerImage != "" {
					fmt.Fprintf(out, "Answer img:  %s\n", rec.CorrectAnswerImage)
				}
				if rec.Subject != "" {
					fmt.Fprintf(out, "Subject:     %s\n", subjectLabel(rec.Subject))
					fmt.Fprintf(out, "Error type:  %s\n", errorTypeLabel(rec.ErrorType))
				}
				if len(rec.KnowledgeTags) > 0 {
					fmt.Fprintf(out, "Tags:        %s\n", strings.Join(rec.KnowledgeTags, ", "))
				}
				if rec.QuestionText != "" {
					fmt.Fprintf(out, "\nQuestion:\n%s\n", rec.QuestionText)
				}
				if rec.UserAnswer != "" {
					fmt.Fprintf(out, "\nYour answer:\n%s\n", rec.UserAnswer)
				}
				if rec.CorrectAnswer != "" {
					fmt.Fprintf(out, "\nCorrect answer:\n%s\n", rec.CorrectAnswer)
				}
				if rec.AIAnalysis != "" {
					fmt.Fprintf(out, "\nAnalysis:\n%s\n", rec.AIAnalysis)
				}
				if rec.ErrorNote != "" {
					fmt.Fprintf(out, "\nLast error: %s\n", rec.ErrorNote)
				}
				if !rec.Memory.Due.IsZero() {
					fmt.Fprintf(out, "\nMemory: repetition %d, ease %.2f, interval %d day(s), %s\n",
						rec.Memory.Repetition, rec.Memory.EaseFactor, rec.Memory.IntervalDays,
						formatDue(rec.Memory.Due, time.Now().UTC()))
				}
				return nil
			})
		},
	}
}

// resolveRecord finds a record by full id first, then by prefix across the
// user's records.
func resolveRecord(cmd *cobra.Command, st *store.Store, cfg *config.Config, token string) (*mistake.Record, error) {
	if full, err := st.GetByID(cmd.Context(), strings.TrimSpace(token)); err != nil {
		return nil, err
	} else if full != nil && full.UserID == cfg.User {
		return full, nil
	}
	records, err := st.ListByStatus(cmd.Context(), cfg.User, nil, store.SortNewest)
	if err != nil {
		return nil, err
	}
	return matchRecordID(records, token)
}
