package remotetable

import "github.com/iota-uz/staff-console/pkg/apiclient"

// Result is one fetched page plus the total number of matching rows.
type Result[T any] struct {
	Rows       []T
	TotalCount int
}

// FromPage converts a decoded {results, count} list body.
func FromPage[T any](p apiclient.Page[T]) Result[T] {
	return Result[T]{Rows: p.Results, TotalCount: p.Count}
}

// RowCache is the last authoritative page. Only the controller writes it.
type RowCache[T any] struct {
	rows  []T
	total int
}

func (c *RowCache[T]) Result() Result[T] {
	rows := make([]T, len(c.rows))
	copy(rows, c.rows)
	return Result[T]{Rows: rows, TotalCount: c.total}
}

func (c *RowCache[T]) Len() int {
	return len(c.rows)
}

func (c *RowCache[T]) replace(r Result[T]) {
	c.rows = make([]T, len(r.Rows))
	copy(c.rows, r.Rows)
	c.total = max(r.TotalCount, 0)
}

func (c *RowCache[T]) patch(key func(T) string, row T) bool {
	k := key(row)
	for i := range c.rows {
		if key(c.rows[i]) == k {
			c.rows[i] = row
			return true
		}
	}
	return false
}

// index returns the position of the row with key k, or -1.
func (c *RowCache[T]) index(key func(T) string, k string) int {
	for i := range c.rows {
		if key(c.rows[i]) == k {
			return i
		}
	}
	return -1
}

func (c *RowCache[T]) removeAt(i int) {
	c.rows = append(c.rows[:i:i], c.rows[i+1:]...)
	if c.total > 0 {
		c.total--
	}
}
