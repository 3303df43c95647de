package remotetable

import (
	"net/url"
	"strconv"
)

var filterSuffixes = map[FilterOperation]string{
	Equals:             "",
	Contains:           "__icontains",
	StartsWith:         "__istartswith",
	EndsWith:           "__iendswith",
	GreaterThan:        "__gt",
	GreaterThanOrEqual: "__gte",
	LessThan:           "__lt",
	LessThanOrEqual:    "__lte",
}

// Request describes one list call.
type Request struct {
	Limit    int
	Offset   int
	Filters  map[string]string
	Ordering string
}

func (r Request) Values() url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(r.Limit))
	v.Set("offset", strconv.Itoa(r.Offset))
	for param, value := range r.Filters {
		v.Set(param, value)
	}
	if r.Ordering != "" {
		v.Set("ordering", r.Ordering)
	}
	return v
}

// Translator maps query state to a Request. Lookups rewrite a grid column
// into a server lookup path, e.g. assigned_to -> assigned_to__last_name.
type Translator struct {
	Lookups map[string]string
}

func (t Translator) lookup(column string) string {
	if path, ok := t.Lookups[column]; ok && path != "" {
		return path
	}
	return column
}

func (t Translator) Translate(s QueryState) Request {
	req := Request{
		Limit:   s.Page.PageSize,
		Offset:  s.Page.PageIndex * s.Page.PageSize,
		Filters: make(map[string]string, len(s.Filters)),
	}
	for _, f := range s.Filters {
		req.Filters[t.lookup(f.ColumnName)+filterSuffixes[f.Operation]] = f.Value
	}
	if len(s.Sorting) > 0 {
		rule := s.Sorting[0]
		prefix := ""
		if rule.Direction == Descending {
			prefix = "-"
		}
		req.Ordering = prefix + t.lookup(rule.ColumnName)
	}
	return req
}

func Translate(s QueryState) Request {
	return Translator{}.Translate(s)
}
