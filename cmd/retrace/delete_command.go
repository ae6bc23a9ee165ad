package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"retrace/internal/config"
	"retrace/internal/store"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete a mistake record permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				rec, err := resolveRecord(cmd, st, cfg, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !force {
					fmt.Fprintf(out, "Delete %s (%s)? This cannot be undone. [y/N]: ", shortID(rec.ID), truncateText(rec.QuestionText, 40))
					reader := bufio.NewScanner(cmd.InOrStdin())
					if !reader.Scan() || strings.ToLower(strings.TrimSpace(reader.Text())) != "y" {
						fmt.Fprintln(out, "Aborted.")
						return nil
					}
				}

				if err := st.Delete(cmd.Context(), rec.ID); err != nil {
					return fmt.Errorf("delete record: %w", err)
				}
				fmt.Fprintf(out, "Deleted %s\n", shortID(rec.ID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	return cmd
}
