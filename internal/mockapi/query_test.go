package mockapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

var testFields = map[string]bool{"id": true, "last_name": true, "age": true, "organization__short_name": true, "done": true}

func TestParseQuery(t *testing.T) {
	spec, errs := ParseQuery(url.Values{
		"limit":                                 {"5"},
		"offset":                                {"10"},
		"ordering":                              {"-last_name"},
		"organization__short_name__icontains":   {"vol"},
		"age__gte":                              {"30"},
		"last_name":                             {""},
	}, testFields)
	require.Nil(t, errs)
	require.Equal(t, Pagination{Limit: 5, Offset: 10}, spec.Page)
	require.Equal(t, &Sort{Field: "last_name", Desc: true}, spec.Sort)
	require.Equal(t, []Condition{
		{Field: "age", Op: OpGte, Value: "30"},
		{Field: "organization__short_name", Op: OpIContains, Value: "vol"},
	}, spec.Where)
}

func TestParseQuery_Defaults(t *testing.T) {
	spec, errs := ParseQuery(url.Values{}, testFields)
	require.Nil(t, errs)
	require.Equal(t, Pagination{Limit: DefaultLimit}, spec.Page)
	require.Nil(t, spec.Sort)

	spec, errs = ParseQuery(url.Values{"limit": {"5000"}}, testFields)
	require.Nil(t, errs)
	require.Equal(t, MaxLimit, spec.Page.Limit)
}

func TestParseQuery_Errors(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		field  string
	}{
		{"non numeric limit", url.Values{"limit": {"ten"}}, "limit"},
		{"negative offset", url.Values{"offset": {"-1"}}, "offset"},
		{"unknown ordering", url.Values{"ordering": {"salary"}}, "ordering"},
		{"unknown filter", url.Values{"salary__gt": {"1"}}, "salary__gt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := ParseQuery(tc.values, testFields)
			require.Contains(t, errs, tc.field)
		})
	}
}

func TestCondition_Match(t *testing.T) {
	cases := []struct {
		cond  Condition
		value any
		want  bool
	}{
		{Condition{Op: OpIContains, Value: "VOL"}, "Volkova", true},
		{Condition{Op: OpIStartsWith, Value: "pe"}, "Petrov", true},
		{Condition{Op: OpIEndsWith, Value: "OV"}, "Petrov", true},
		{Condition{Op: OpExact, Value: "petrov"}, "Petrov", false},
		{Condition{Op: OpGt, Value: "30"}, 31, true},
		{Condition{Op: OpLte, Value: "30"}, 31, false},
		{Condition{Op: OpExact, Value: "3"}, 3, true},
		{Condition{Op: OpExact, Value: "true"}, true, true},
		{Condition{Op: OpExact, Value: "false"}, true, false},
		{Condition{Op: OpGte, Value: "2024-01-01"}, "2024-03-01", true},
		{Condition{Op: OpIContains, Value: "x"}, nil, false},
		{Condition{Op: OpExact, Value: "null"}, nil, true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.cond.Match(tc.value), "%+v on %v", tc.cond, tc.value)
	}
}

func TestCollection_List(t *testing.T) {
	type row struct {
		ID   int
		Name string
	}
	c := NewCollection([]string{"id", "name"}, func(r row) map[string]any {
		return map[string]any{"id": r.ID, "name": r.Name}
	})
	for _, name := range []string{"bravo", "alpha", "charlie", "alpha"} {
		c.Insert(func(id int) row { return row{ID: id, Name: name} })
	}

	rows, total := c.List(QuerySpec{Sort: &Sort{Field: "name"}, Page: Pagination{Limit: 3}})
	require.Equal(t, 4, total)
	require.Equal(t, []row{{2, "alpha"}, {4, "alpha"}, {1, "bravo"}}, rows)

	rows, total = c.List(QuerySpec{
		Where: []Condition{{Field: "name", Op: OpExact, Value: "alpha"}},
		Page:  Pagination{Limit: 10, Offset: 1},
	})
	require.Equal(t, 2, total)
	require.Equal(t, []row{{4, "alpha"}}, rows)

	rows, total = c.List(QuerySpec{Page: Pagination{Limit: 10, Offset: 50}})
	require.Equal(t, 4, total)
	require.Empty(t, rows)

	updated, found, err := c.Update(3, func(r row) (row, error) {
		r.Name = "delta"
		return r, nil
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "delta", updated.Name)
	require.True(t, c.Delete(3))
	require.False(t, c.Delete(3))
	require.Equal(t, 3, c.Len())
}
