package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"retrace/internal/config"
	"retrace/internal/review"
	"retrace/internal/srs"
	"retrace/internal/store"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review due mistakes and rate your recall",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				session, err := review.StartSession(cmd.Context(), st, cfg, logger, time.Now())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if session.Done() {
					fmt.Fprintln(out, "Nothing is due for review. Nice work.")
					return nil
				}
				fmt.Fprintf(out, "%d record(s) due for review.\n", session.Remaining())

				reader := bufio.NewScanner(cmd.InOrStdin())
				for !session.Done() {
					rec := session.Current()
					fmt.Fprintln(out)
					fmt.Fprintf(out, "[%d left] %s / %s\n", session.Remaining(), subjectLabel(rec.Subject), errorTypeLabel(rec.ErrorType))
					fmt.Fprintf(out, "Question: %s\n", rec.QuestionText)
					if len(rec.KnowledgeTags) > 0 {
						fmt.Fprintf(out, "Tags: %s\n", strings.Join(rec.KnowledgeTags, ", "))
					}

					fmt.Fprint(out, "Press enter to reveal the analysis...")
					if !reader.Scan() {
						break
					}
					if rec.UserAnswer != "" {
						fmt.Fprintf(out, "Your answer then: %s\n", rec.UserAnswer)
					}
					if rec.CorrectAnswer != "" {
						fmt.Fprintf(out, "Correct answer: %s\n", rec.CorrectAnswer)
					}
					fmt.Fprintf(out, "Analysis: %s\n", rec.AIAnalysis)

					rating, quit, err := promptRating(out, reader)
					if err != nil {
						return err
					}
					if quit {
						break
					}
					if err := session.Rate(cmd.Context(), rating, time.Now()); err != nil {
						if errors.Is(err, srs.ErrInvalidRating) {
							fmt.Fprintln(out, "Rating must be between 0 and 5.")
							continue
						}
						return err
					}
				}

				summary := session.Summary()
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Session finished: %d rated (%d passed, %d to relearn)", summary.Rated, summary.Passed, summary.Lapsed)
				if left := summary.Total - summary.Rated; left > 0 {
					fmt.Fprintf(out, ", %d still due", left)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}
}

// promptRating loops until the user enters a 0-5 rating or quits.
func promptRating(out io.Writer, reader *bufio.Scanner) (srs.Rating, bool, error) {
	for {
		fmt.Fprint(out, "How well did you recall it? (0=blank .. 5=easy, q=stop): ")
		if !reader.Scan() {
			return 0, true, reader.Err()
		}
		input := strings.TrimSpace(reader.Text())
		switch strings.ToLower(input) {
		case "q", "quit":
			return 0, true, nil
		case "":
			continue
		}
		value, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintln(out, "Enter a number between 0 and 5, or q to stop.")
			continue
		}
		rating, err := srs.ParseRating(value)
		if err != nil {
			fmt.Fprintln(out, "Enter a number between 0 and 5, or q to stop.")
			continue
		}
		return rating, false, nil
	}
}
