package summary

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderTable formats a report as a two-column console table.
func RenderTable(report Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Metric", "Value"})

	rows := []struct {
		label string
		value string
	}{
		{"Run ID", report.RunID},
		{"Processed", strconv.FormatInt(report.TotalProcessed, 10)},
		{"Liked", strconv.FormatInt(report.Liked, 10)},
		{"Skipped", strconv.FormatInt(report.Skipped, 10)},
		{"Errors", strconv.FormatInt(report.Errors, 10)},
		{"Retries", strconv.FormatInt(report.Retries, 10)},
		{"Total likes", strconv.Itoa(report.TotalLikes)},
		{"New connections", strconv.Itoa(report.NewConnections)},
		{"Gained (today/week/month/year)", fmt.Sprintf("%d / %d / %d / %d",
			report.ConnectionsGainedToday, report.ConnectionsGainedWeek,
			report.ConnectionsGainedMonth, report.ConnectionsGainedYear)},
		{"Lost (today/week/month/year)", fmt.Sprintf("%d / %d / %d / %d",
			report.ConnectionsLostToday, report.ConnectionsLostWeek,
			report.ConnectionsLostMonth, report.ConnectionsLostYear)},
		{"Likes per connection", fmt.Sprintf("%.2f", report.LikesPerConnectionRatio)},
		{"Generated", report.Timestamp},
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row.label, row.value})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
