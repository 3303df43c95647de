// Package remotetable is the view-model behind every server-paged grid:
// it owns the paging/filter/sort state, turns it into list query
// parameters and reconciles fetched pages under last-request-wins.
package remotetable

import (
	"sort"
	"strings"

	"github.com/go-faster/errors"

	"github.com/iota-uz/staff-console/pkg/serrors"
)

var (
	ErrInvalidPageSize  = serrors.NewError("TABLE_INVALID_PAGE_SIZE", "page size must be positive", "")
	ErrInvalidPageIndex = serrors.NewError("TABLE_INVALID_PAGE_INDEX", "page index must not be negative", "")
	ErrUnknownOperation = serrors.NewError("TABLE_UNKNOWN_OPERATION", "unknown filter operation", "")
	ErrEmptyColumn      = serrors.NewError("TABLE_EMPTY_COLUMN", "column name is required", "")
)

type FilterOperation string

const (
	Equals             FilterOperation = "equals"
	Contains           FilterOperation = "contains"
	StartsWith         FilterOperation = "startsWith"
	EndsWith           FilterOperation = "endsWith"
	GreaterThan        FilterOperation = "greaterThan"
	GreaterThanOrEqual FilterOperation = "greaterThanOrEqual"
	LessThan           FilterOperation = "lessThan"
	LessThanOrEqual    FilterOperation = "lessThanOrEqual"
)

var operationAliases = map[string]FilterOperation{
	"eq":  Equals,
	"=":   Equals,
	"has": Contains,
	"sw":  StartsWith,
	"ew":  EndsWith,
	"gt":  GreaterThan,
	">":   GreaterThan,
	"gte": GreaterThanOrEqual,
	">=":  GreaterThanOrEqual,
	"lt":  LessThan,
	"<":   LessThan,
	"lte": LessThanOrEqual,
	"<=":  LessThanOrEqual,
}

func (o FilterOperation) Valid() bool {
	_, ok := filterSuffixes[o]
	return ok
}

// ParseFilterOperation accepts canonical names (case-insensitive) and the
// short aliases used on the command line (gt, gte, sw, ...).
func ParseFilterOperation(s string) (FilterOperation, error) {
	s = strings.TrimSpace(s)
	if op, ok := operationAliases[strings.ToLower(s)]; ok {
		return op, nil
	}
	for op := range filterSuffixes {
		if strings.EqualFold(string(op), s) {
			return op, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownOperation, "%q", s)
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

type PageRequest struct {
	PageIndex int
	PageSize  int
}

type ColumnFilter struct {
	ColumnName string
	Operation  FilterOperation
	Value      string
}

type SortRule struct {
	ColumnName string
	Direction  SortDirection
}

// QueryState is an immutable snapshot. Filters are ordered by column name.
type QueryState struct {
	Page    PageRequest
	Filters []ColumnFilter
	Sorting []SortRule
}

func DefaultState(pageSize int) QueryState {
	return QueryState{Page: PageRequest{PageIndex: 0, PageSize: pageSize}}
}

func (s QueryState) Clone() QueryState {
	out := QueryState{Page: s.Page}
	if len(s.Filters) > 0 {
		out.Filters = append([]ColumnFilter(nil), s.Filters...)
	}
	if len(s.Sorting) > 0 {
		out.Sorting = append([]SortRule(nil), s.Sorting...)
	}
	return out
}

func (s QueryState) Equal(other QueryState) bool {
	if s.Page != other.Page || len(s.Filters) != len(other.Filters) || len(s.Sorting) != len(other.Sorting) {
		return false
	}
	for i := range s.Filters {
		if s.Filters[i] != other.Filters[i] {
			return false
		}
	}
	for i := range s.Sorting {
		if s.Sorting[i] != other.Sorting[i] {
			return false
		}
	}
	return true
}

func (s QueryState) Filter(column string) (ColumnFilter, bool) {
	for _, f := range s.Filters {
		if f.ColumnName == column {
			return f, true
		}
	}
	return ColumnFilter{}, false
}

// PageCount is the number of pages needed for total rows.
func (s QueryState) PageCount(total int) int {
	if s.Page.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + s.Page.PageSize - 1) / s.Page.PageSize
}

func sortedFilters(m map[string]ColumnFilter) []ColumnFilter {
	if len(m) == 0 {
		return nil
	}
	out := make([]ColumnFilter, 0, len(m))
	for _, f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ColumnName < out[j].ColumnName })
	return out
}
