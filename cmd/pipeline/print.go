package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/BarkinBalci/bi-warehouse/internal/pipeline"
	"github.com/BarkinBalci/bi-warehouse/internal/report"
)

func printSummary(w io.Writer, summary *pipeline.Summary) {
	fmt.Fprintf(w, "Run %s completed in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	if summary.CustomersDegraded {
		fmt.Fprintf(w, "Customers loaded from fallback data: %s\n", summary.DegradedCause)
	}

	table := newTable(w, []string{"Dataset", "Table", "Extracted", "Loaded"})
	for _, ds := range summary.Datasets {
		table.Append([]string{
			string(ds.Dataset),
			ds.Table,
			strconv.Itoa(ds.Extracted),
			strconv.Itoa(ds.Loaded),
		})
	}
	table.Render()
	fmt.Fprintln(w)
}

// printResult renders a report; a negative limit prints every row
func printResult(w io.Writer, result *report.Result, limit int) {
	rows := result.Rows
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	fmt.Fprintf(w, "%s (%d rows)\n", result.Name, len(rows))

	table := newTable(w, result.Columns)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		table.Append(cells)
	}
	table.Render()
	fmt.Fprintln(w)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func formatCell(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
