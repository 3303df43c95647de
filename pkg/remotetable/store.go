package remotetable

import (
	"strings"
	"sync"

	"github.com/go-faster/errors"
)

// Store holds the query state of one table. Every mutation is applied
// atomically and returns the resulting snapshot.
type Store struct {
	mu      sync.Mutex
	page    PageRequest
	filters map[string]ColumnFilter
	sorting []SortRule
}

func NewStore(initial QueryState) (*Store, error) {
	if initial.Page.PageSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidPageSize, "got %d", initial.Page.PageSize)
	}
	if initial.Page.PageIndex < 0 {
		return nil, errors.Wrapf(ErrInvalidPageIndex, "got %d", initial.Page.PageIndex)
	}
	s := &Store{page: initial.Page, filters: map[string]ColumnFilter{}}
	for _, f := range initial.Filters {
		if err := validateFilter(f); err != nil {
			return nil, err
		}
		s.filters[f.ColumnName] = f
	}
	if err := validateSorting(initial.Sorting); err != nil {
		return nil, err
	}
	s.sorting = append([]SortRule(nil), initial.Sorting...)
	return s, nil
}

func (s *Store) State() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() QueryState {
	st := QueryState{Page: s.page, Filters: sortedFilters(s.filters)}
	if len(s.sorting) > 0 {
		st.Sorting = append([]SortRule(nil), s.sorting...)
	}
	return st
}

func (s *Store) SetPageIndex(index int) (QueryState, error) {
	if index < 0 {
		return s.State(), errors.Wrapf(ErrInvalidPageIndex, "got %d", index)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page.PageIndex = index
	return s.snapshot(), nil
}

// SetPageSize changes the page size and resets the page index.
func (s *Store) SetPageSize(size int) (QueryState, error) {
	if size <= 0 {
		return s.State(), errors.Wrapf(ErrInvalidPageSize, "got %d", size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = PageRequest{PageIndex: 0, PageSize: size}
	return s.snapshot(), nil
}

// SetFilter replaces the filter of f.ColumnName and resets the page index.
func (s *Store) SetFilter(f ColumnFilter) (QueryState, error) {
	if err := validateFilter(f); err != nil {
		return s.State(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[f.ColumnName] = f
	s.page.PageIndex = 0
	return s.snapshot(), nil
}

// SetFilters replaces the whole filter set and resets the page index.
func (s *Store) SetFilters(filters []ColumnFilter) (QueryState, error) {
	next := make(map[string]ColumnFilter, len(filters))
	for _, f := range filters {
		if err := validateFilter(f); err != nil {
			return s.State(), err
		}
		next[f.ColumnName] = f
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = next
	s.page.PageIndex = 0
	return s.snapshot(), nil
}

func (s *Store) RemoveFilter(column string) QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filters[column]; ok {
		delete(s.filters, column)
		s.page.PageIndex = 0
	}
	return s.snapshot()
}

func (s *Store) ClearFilters() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.filters) > 0 {
		s.filters = map[string]ColumnFilter{}
		s.page.PageIndex = 0
	}
	return s.snapshot()
}

// SetSorting replaces the sort rules. The page index is kept.
func (s *Store) SetSorting(rules []SortRule) (QueryState, error) {
	if err := validateSorting(rules); err != nil {
		return s.State(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sorting = append([]SortRule(nil), rules...)
	return s.snapshot(), nil
}

func validateFilter(f ColumnFilter) error {
	if strings.TrimSpace(f.ColumnName) == "" {
		return ErrEmptyColumn
	}
	if !f.Operation.Valid() {
		return errors.Wrapf(ErrUnknownOperation, "%q on column %s", f.Operation, f.ColumnName)
	}
	return nil
}

func validateSorting(rules []SortRule) error {
	for _, r := range rules {
		if strings.TrimSpace(r.ColumnName) == "" {
			return ErrEmptyColumn
		}
		if r.Direction != Ascending && r.Direction != Descending {
			return errors.Errorf("unknown sort direction %q on column %s", r.Direction, r.ColumnName)
		}
	}
	return nil
}
