package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"retrace/internal/config"
	"retrace/internal/mistake"
	"retrace/internal/store"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var answerImage string
	var analyzeNow bool

	cmd := &cobra.Command{
		Use:   "add <image-path>",
		Short: "Capture a mistake photo into the analysis queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve image path: %w", err)
			}
			if _, err := os.Stat(imagePath); err != nil {
				return fmt.Errorf("image %s: %w", imagePath, err)
			}
			if answerImage != "" {
				expanded, err := config.ExpandPath(answerImage)
				if err != nil {
					return fmt.Errorf("resolve answer image path: %w", err)
				}
				if _, err := os.Stat(expanded); err != nil {
					return fmt.Errorf("answer image %s: %w", expanded, err)
				}
				answerImage = expanded
			}

			err = ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				rec, err := mistake.New(cfg.User, imagePath, time.Now())
				if err != nil {
					return err
				}
				rec.CorrectAnswerImage = answerImage
				if err := st.Insert(cmd.Context(), rec); err != nil {
					return fmt.Errorf("save record: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (pending analysis)\n", shortID(rec.ID))
				return nil
			})
			if err != nil {
				return err
			}

			if analyzeNow {
				return runAnalyzeBatch(cmd, ctx)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run `retrace analyze` to process the queue.")
			return nil
		},
	}

	cmd.Flags().StringVar(&answerImage, "answer-image", "", "Optional photo of the correct answer")
	cmd.Flags().BoolVar(&analyzeNow, "analyze-now", false, "Run the analysis batch immediately after adding")
	return cmd
}
