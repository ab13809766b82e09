package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dupefinder/internal/decisions"
	"dupefinder/internal/media"
)

func newDecisionsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Show recent keep/remove decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			journal, err := decisions.Open(cfg)
			if err != nil {
				return fmt.Errorf("open decisions journal: %w", err)
			}
			defer journal.Close()

			recent, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recent) == 0 {
				fmt.Fprintln(out, "No decisions recorded yet.")
				return nil
			}

			headers := []string{"recorded", "title", "action", "id", "score", "file", "size"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight}
			rows := make([][]string, 0, len(recent))
			for _, d := range recent {
				score := "-"
				if d.Scored {
					score = fmt.Sprintf("%d", d.Score)
				}
				rows = append(rows, []string{
					d.RecordedAt.Local().Format("2006-01-02 15:04:05"),
					d.Title,
					string(d.Action),
					fmt.Sprintf("%d", d.MediaID),
					score,
					d.File,
					media.FormatBytes(d.SizeBytes),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of decisions to show")
	return cmd
}
