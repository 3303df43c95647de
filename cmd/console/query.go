package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/pkg/columns"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

// queryFlags are the grid controls shared by list, export and browse.
type queryFlags struct {
	filters []string
	sort    string
	page    int
	size    int
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&q.filters, "filter", "f", nil, "Column filter column[:op]=value, op is contains (default), eq, sw, ew, gt, gte, lt, lte")
	cmd.Flags().StringVarP(&q.sort, "sort", "s", "", "Sort column; prefix with - for descending")
	cmd.Flags().IntVar(&q.page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&q.size, "size", 0, "Rows per page; defaults to PAGE_SIZE")
}

// parseFilter reads column[:op]=value.
func parseFilter(layout columns.Layout, s string) (remotetable.ColumnFilter, error) {
	left, value, ok := strings.Cut(s, "=")
	if !ok {
		return remotetable.ColumnFilter{}, fmt.Errorf("invalid filter %q: want column[:op]=value", s)
	}
	column, opName, hasOp := strings.Cut(strings.TrimSpace(left), ":")
	op := remotetable.Contains
	if hasOp {
		parsed, err := remotetable.ParseFilterOperation(opName)
		if err != nil {
			return remotetable.ColumnFilter{}, err
		}
		op = parsed
	}
	col, known := layout.Column(column)
	if !known || !col.Filterable {
		return remotetable.ColumnFilter{}, fmt.Errorf("column %q of %s cannot be filtered", column, layout.Resource)
	}
	return remotetable.ColumnFilter{ColumnName: column, Operation: op, Value: value}, nil
}

func parseSort(layout columns.Layout, s string) ([]remotetable.SortRule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	rule := remotetable.SortRule{ColumnName: s, Direction: remotetable.Ascending}
	if name, desc := strings.CutPrefix(s, "-"); desc {
		rule = remotetable.SortRule{ColumnName: name, Direction: remotetable.Descending}
	}
	col, known := layout.Column(rule.ColumnName)
	if !known || !col.Sortable {
		return nil, fmt.Errorf("column %q of %s cannot be sorted", rule.ColumnName, layout.Resource)
	}
	return []remotetable.SortRule{rule}, nil
}

func checkPageSize(size int, allowed []int) error {
	if !slices.Contains(allowed, size) {
		return fmt.Errorf("page size %d is not one of %v", size, allowed)
	}
	return nil
}

// state builds the initial query state. The table store keeps the last
// filter given for a column.
func (q *queryFlags) state(layout columns.Layout, defaultSize int, allowed []int) (remotetable.QueryState, error) {
	size := q.size
	if size == 0 {
		size = defaultSize
	}
	if allowed != nil {
		if err := checkPageSize(size, allowed); err != nil {
			return remotetable.QueryState{}, err
		}
	}
	if q.page < 1 {
		return remotetable.QueryState{}, fmt.Errorf("page must be at least 1, got %d", q.page)
	}
	state := remotetable.DefaultState(size)
	state.Page.PageIndex = q.page - 1

	for _, raw := range q.filters {
		f, err := parseFilter(layout, raw)
		if err != nil {
			return remotetable.QueryState{}, err
		}
		state.Filters = append(state.Filters, f)
	}
	sorting, err := parseSort(layout, q.sort)
	if err != nil {
		return remotetable.QueryState{}, err
	}
	state.Sorting = sorting
	return state, nil
}
