// Package console renders tables and records for the terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/iota-uz/staff-console/pkg/columns"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

// RenderGrid writes heading, the cached page and the pager footer.
func RenderGrid[T columns.Row](w io.Writer, heading string, layout columns.Layout, snap remotetable.Snapshot[T]) {
	if heading != "" {
		_, _ = fmt.Fprintln(w, heading)
	}
	if summary := QuerySummary(snap.State); summary != "" {
		_, _ = fmt.Fprintln(w, summary)
	}

	table := newTable(w)
	table.SetHeader(layout.Titles())
	for _, row := range snap.Rows {
		table.Append(layout.Cells(row))
	}
	table.Render()
	_, _ = fmt.Fprintln(w, Footer(snap))
}

// Footer is "page x/y, total n", with a loading marker while a fetch runs.
func Footer[T any](snap remotetable.Snapshot[T]) string {
	pages := max(snap.PageCount, 1)
	footer := fmt.Sprintf("page %d/%d, total %d, %d per page",
		snap.State.Page.PageIndex+1, pages, snap.TotalCount, snap.State.Page.PageSize)
	if snap.Loading {
		footer += " (loading...)"
	}
	if snap.Err != nil {
		footer += " (showing last loaded data)"
	}
	return footer
}

var operationSymbols = map[remotetable.FilterOperation]string{
	remotetable.Equals:             "=",
	remotetable.Contains:           "contains",
	remotetable.StartsWith:         "starts with",
	remotetable.EndsWith:           "ends with",
	remotetable.GreaterThan:        ">",
	remotetable.GreaterThanOrEqual: ">=",
	remotetable.LessThan:           "<",
	remotetable.LessThanOrEqual:    "<=",
}

// QuerySummary describes active filters and ordering.
func QuerySummary(s remotetable.QueryState) string {
	parts := make([]string, 0, len(s.Filters)+1)
	for _, f := range s.Filters {
		parts = append(parts, fmt.Sprintf("%s %s %q", f.ColumnName, operationSymbols[f.Operation], f.Value))
	}
	if len(s.Sorting) > 0 {
		arrow := "asc"
		if s.Sorting[0].Direction == remotetable.Descending {
			arrow = "desc"
		}
		parts = append(parts, fmt.Sprintf("sorted by %s %s", s.Sorting[0].ColumnName, arrow))
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

// RenderRecord writes one record as a two-column field/value table.
func RenderRecord(w io.Writer, layout columns.Layout, row columns.Row) {
	table := newTable(w)
	table.SetHeader([]string{"Field", "Value"})
	for _, c := range layout.Columns {
		table.Append([]string{c.Title, row.Cell(c.Key)})
	}
	table.Render()
}
