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

func newListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mistake records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFilter(statusFlag)
			if err != nil {
				return err
			}
			sort, ok := store.ParseSortOrder(sortFlag)
			if !ok {
				return fmt.Errorf("unknown sort order %q (valid: importance, newest)", sortFlag)
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				records, err := st.ListByStatus(cmd.Context(), cfg.User, statuses, sort)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No records found.")
					return nil
				}

				now := time.Now().UTC()
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						shortID(rec.ID),
						statusLabel(rec.Status),
						subjectLabel(rec.Subject),
						errorTypeLabel(rec.ErrorType),
						truncateText(rec.QuestionText, 48),
						formatDue(rec.Memory.Due, now),
						fmt.Sprintf("%d", rec.Memory.Repetition),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Status", "Subject", "Error", "Question", "Due", "Reps"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (comma separated: pending, analyzing, review_needed, active)")
	cmd.Flags().StringVar(&sortFlag, "sort", "newest", "Sort order: importance (most urgent first) or newest")
	return cmd
}

func parseStatusFilter(value string) ([]mistake.Status, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return mistake.AllStatuses(), nil
	}
	parts := strings.Split(value, ",")
	statuses := make([]mistake.Status, 0, len(parts))
	for _, part := range parts {
		status, ok := mistake.ParseStatus(part)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", strings.TrimSpace(part))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
