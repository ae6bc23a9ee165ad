package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"retrace/internal/config"
	"retrace/internal/mistake"
	"retrace/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue and review workload at a glance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				stats, err := st.Stats(cmd.Context(), cfg.User)
				if err != nil {
					return err
				}
				due, err := st.CountDue(cmd.Context(), cfg.User, time.Now())
				if err != nil {
					return err
				}

				total := 0
				rows := make([][]string, 0, len(stats))
				for _, status := range mistake.AllStatuses() {
					count := stats[status]
					total += count
					rows = append(rows, []string{statusLabel(status), fmt.Sprintf("%d", count)})
				}
				rows = append(rows, []string{"Total", fmt.Sprintf("%d", total)})

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Records"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))

				switch {
				case due > 0:
					fmt.Fprintf(out, "\n%d record(s) due for review. Run `retrace review`.\n", due)
				case stats[mistake.StatusPending] > 0:
					fmt.Fprintf(out, "\n%d record(s) waiting for analysis. Run `retrace analyze`.\n", stats[mistake.StatusPending])
				case stats[mistake.StatusReviewNeeded] > 0:
					fmt.Fprintf(out, "\n%d record(s) waiting for confirmation. Run `retrace list --status review_needed`.\n", stats[mistake.StatusReviewNeeded])
				default:
					fmt.Fprintln(out, "\nAll caught up.")
				}
				return nil
			})
		},
	}
}
