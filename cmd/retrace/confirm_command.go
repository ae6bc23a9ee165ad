package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"retrace/internal/config"
	"retrace/internal/mistake"
	"retrace/internal/similarity"
	"retrace/internal/store"
)

func newConfirmCommand(ctx *commandContext) *cobra.Command {
	var subjectFlag string
	var errorTypeFlag string
	var questionFlag string
	var answerFlag string
	var correctFlag string
	var analysisFlag string
	var tagsFlag []string

	cmd := &cobra.Command{
		Use:   "confirm <record-id>",
		Short: "Review an analyzed mistake and activate it for spaced repetition",
		Long: `Confirm finalizes a record the analyzer has processed. Flags override the
AI-suggested fields before the record enters the review rotation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				candidates, err := st.ListByStatus(cmd.Context(), cfg.User, []mistake.Status{mistake.StatusReviewNeeded}, store.SortNewest)
				if err != nil {
					return err
				}
				rec, err := matchRecordID(candidates, args[0])
				if err != nil {
					return fmt.Errorf("%w (only review_needed records can be confirmed)", err)
				}

				if subjectFlag != "" {
					subject, ok := mistake.ParseSubject(subjectFlag)
					if !ok {
						return fmt.Errorf("unknown subject %q (valid: %s)", subjectFlag, joinSubjects())
					}
					rec.Subject = subject
				}
				if errorTypeFlag != "" {
					errorType, ok := mistake.ParseErrorType(errorTypeFlag)
					if !ok {
						return fmt.Errorf("unknown error type %q (valid: %s)", errorTypeFlag, joinErrorTypes())
					}
					rec.ErrorType = errorType
				}
				if questionFlag != "" {
					rec.QuestionText = strings.TrimSpace(questionFlag)
				}
				if answerFlag != "" {
					rec.UserAnswer = strings.TrimSpace(answerFlag)
				}
				if correctFlag != "" {
					rec.CorrectAnswer = strings.TrimSpace(correctFlag)
				}
				if analysisFlag != "" {
					rec.AIAnalysis = strings.TrimSpace(analysisFlag)
				}
				if len(tagsFlag) > 0 {
					rec.KnowledgeTags = mistake.NormalizeTags(tagsFlag)
				}

				if err := rec.Confirm(time.Now()); err != nil {
					return err
				}
				if err := st.Update(cmd.Context(), rec); err != nil {
					return fmt.Errorf("save record: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Confirmed %s: %s / %s\n", shortID(rec.ID), subjectLabel(rec.Subject), errorTypeLabel(rec.ErrorType))
				fmt.Fprintln(out, "The record is active and due for review now.")

				printSimilarRecords(cmd, cfg, st, rec)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&subjectFlag, "subject", "", "Override the subject classification")
	cmd.Flags().StringVar(&errorTypeFlag, "error-type", "", "Override the error type classification")
	cmd.Flags().StringVar(&questionFlag, "question", "", "Override the transcribed question text")
	cmd.Flags().StringVar(&answerFlag, "answer", "", "Override the transcribed answer")
	cmd.Flags().StringVar(&correctFlag, "correct", "", "Record the correct answer")
	cmd.Flags().StringVar(&analysisFlag, "analysis", "", "Override the AI analysis text")
	cmd.Flags().StringSliceVar(&tagsFlag, "tags", nil, "Replace the knowledge point tags")
	return cmd
}

const (
	similarThreshold = 0.35
	similarLimit     = 3
)

// printSimilarRecords surfaces earlier mistakes that look like the one just
// confirmed. Lookup failures are not worth failing the confirm over.
func printSimilarRecords(cmd *cobra.Command, cfg *config.Config, st *store.Store, rec *mistake.Record) {
	actives, err := st.ListByStatus(cmd.Context(), cfg.User, []mistake.Status{mistake.StatusActive}, store.SortNewest)
	if err != nil {
		return
	}
	matches := similarity.RankSimilar(rec, actives, similarThreshold, similarLimit)
	if len(matches) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nYou have made similar mistakes before:")
	for _, match := range matches {
		fmt.Fprintf(out, "  %s  %s (%.0f%% similar)\n", shortID(match.Record.ID), truncateText(match.Record.QuestionText, 56), match.Score*100)
	}
}

func joinSubjects() string {
	values := make([]string, 0, len(mistake.Subjects()))
	for _, s := range mistake.Subjects() {
		values = append(values, string(s))
	}
	return strings.Join(values, ", ")
}

func joinErrorTypes() string {
	values := make([]string, 0, len(mistake.ErrorTypes()))
	for _, e := range mistake.ErrorTypes() {
		values = append(values, string(e))
	}
	return strings.Join(values, ", ")
}
