package mockapi

import (
	"sort"
	"sync"
)

// Collection is an in-memory table keyed by an auto-incremented id.
type Collection[T any] struct {
	// flatten exposes the lookup paths of a record, joins included.
	flatten func(T) map[string]any
	fields  map[string]bool

	mu     sync.RWMutex
	nextID int
	rows   map[int]T
}

func NewCollection[T any](fields []string, flatten func(T) map[string]any) *Collection[T] {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return &Collection[T]{flatten: flatten, fields: set, rows: map[int]T{}}
}

func (c *Collection[T]) Fields() map[string]bool {
	return c.fields
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Insert stores the row built for the next id.
func (c *Collection[T]) Insert(build func(id int) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	row := build(c.nextID)
	c.rows[c.nextID] = row
	return row
}

func (c *Collection[T]) Get(id int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	row, ok := c.rows[id]
	return row, ok
}

// Update replaces the row with the result of fn. fn runs under the lock and
// must not touch the collection.
func (c *Collection[T]) Update(id int, fn func(T) (T, error)) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	next, err := fn(row)
	if err != nil {
		return row, true, err
	}
	c.rows[id] = next
	return next, true, nil
}

func (c *Collection[T]) Delete(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rows[id]; !ok {
		return false
	}
	delete(c.rows, id)
	return true
}

// All returns every row ordered by id.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	ids := make([]int, 0, len(c.rows))
	for id := range c.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = c.rows[id]
	}
	c.mu.RUnlock()
	return out
}

// List filters, orders and pages the collection. It returns the page and
// the number of rows matching before paging.
func (c *Collection[T]) List(spec QuerySpec) ([]T, int) {
	type entry struct {
		row  T
		flat map[string]any
	}
	rows := c.All()
	matched := make([]entry, 0, len(rows))
	for _, row := range rows {
		flat := c.flatten(row)
		ok := true
		for _, cond := range spec.Where {
			if !cond.Match(flat[cond.Field]) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, entry{row: row, flat: flat})
		}
	}

	if spec.Sort != nil {
		field, desc := spec.Sort.Field, spec.Sort.Desc
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].flat[field], matched[j].flat[field]
			if desc {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	total := len(matched)
	start := min(spec.Page.Offset, total)
	end := min(start+spec.Page.Limit, total)
	out := make([]T, 0, end-start)
	for _, e := range matched[start:end] {
		out = append(out, e.row)
	}
	return out, total
}
