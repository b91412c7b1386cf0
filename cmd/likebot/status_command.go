package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"likebot/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show target counts by processing status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			st, err := store.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			counts, err := st.CountByStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("count statuses: %w", err)
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Status", "Targets"})
			tw.AppendRows([]table.Row{
				{"Pending", strconv.Itoa(counts.Pending)},
				{"Liked", strconv.Itoa(counts.Liked)},
				{"Skipped", strconv.Itoa(counts.Skipped)},
				{"Failed", strconv.Itoa(counts.Failed)},
				{"Retry", strconv.Itoa(counts.Retry)},
			})
			tw.AppendFooter(table.Row{"Total", strconv.Itoa(counts.Total)})
			tw.SetColumnConfigs([]table.ColumnConfig{
				{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
				{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
			})

			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}
