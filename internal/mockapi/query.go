package mockapi

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/form"

	"github.com/iota-uz/staff-console/pkg/serrors"
)

type Op int

const (
	OpExact Op = iota
	OpIContains
	OpIStartsWith
	OpIEndsWith
	OpGt
	OpGte
	OpLt
	OpLte
)

var lookupOps = map[string]Op{
	"exact":       OpExact,
	"icontains":   OpIContains,
	"istartswith": OpIStartsWith,
	"iendswith":   OpIEndsWith,
	"gt":          OpGt,
	"gte":         OpGte,
	"lt":          OpLt,
	"lte":         OpLte,
}

const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

type Condition struct {
	Field string
	Op    Op
	Value string
}

type Sort struct {
	Field string
	Desc  bool
}

type Pagination struct {
	Limit  int
	Offset int
}

// QuerySpec is a parsed Django-style list query.
type QuerySpec struct {
	Where []Condition
	Sort  *Sort
	Page  Pagination
}

type listParams struct {
	Limit    *int   `form:"limit"`
	Offset   int    `form:"offset"`
	Ordering string `form:"ordering"`
}

var reserved = map[string]bool{"limit": true, "offset": true, "ordering": true, "format": true}

var decoder = form.NewDecoder()

// ParseQuery reads limit, offset, ordering and field lookups. Filters with an
// empty value are ignored. fields lists the lookup paths a resource supports.
func ParseQuery(values url.Values, fields map[string]bool) (QuerySpec, serrors.ValidationErrors) {
	var params listParams
	errs := serrors.ValidationErrors{}
	if err := decoder.Decode(&params, values); err != nil {
		if decodeErrs, ok := err.(form.DecodeErrors); ok {
			for field := range decodeErrs {
				errs[field] = "must be an integer"
			}
		} else {
			errs["query"] = err.Error()
		}
		return QuerySpec{}, errs
	}

	spec := QuerySpec{Page: Pagination{Limit: DefaultLimit, Offset: params.Offset}}
	if params.Limit != nil {
		spec.Page.Limit = *params.Limit
	}
	if spec.Page.Limit < 0 {
		errs["limit"] = "must be non-negative"
	}
	if spec.Page.Limit > MaxLimit {
		spec.Page.Limit = MaxLimit
	}
	if spec.Page.Offset < 0 {
		errs["offset"] = "must be non-negative"
	}

	if params.Ordering != "" {
		first := strings.TrimSpace(strings.Split(params.Ordering, ",")[0])
		s := &Sort{Field: strings.TrimPrefix(first, "-"), Desc: strings.HasPrefix(first, "-")}
		if !fields[s.Field] {
			errs["ordering"] = "unknown field " + s.Field
		}
		spec.Sort = s
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if reserved[key] {
			continue
		}
		value := values.Get(key)
		if value == "" {
			continue
		}
		cond, ok := parseLookup(key, value)
		if !ok || !fields[cond.Field] {
			errs[key] = "unsupported filter"
			continue
		}
		spec.Where = append(spec.Where, cond)
	}

	if len(errs) > 0 {
		return QuerySpec{}, errs
	}
	return spec, nil
}

func parseLookup(key, value string) (Condition, bool) {
	parts := strings.Split(key, "__")
	op := OpExact
	if len(parts) > 1 {
		if o, ok := lookupOps[parts[len(parts)-1]]; ok {
			op = o
			parts = parts[:len(parts)-1]
		}
	}
	field := strings.Join(parts, "__")
	return Condition{Field: field, Op: op, Value: value}, field != ""
}

// Match evaluates c against a flattened record value.
func (c Condition) Match(v any) bool {
	if v == nil {
		return c.Op == OpExact && (c.Value == "null" || c.Value == "None")
	}
	switch x := v.(type) {
	case bool:
		if c.Op != OpExact {
			return matchText(c.Op, strconv.FormatBool(x), c.Value)
		}
		want, err := strconv.ParseBool(c.Value)
		return err == nil && want == x
	case int:
		return matchNumber(c.Op, float64(x), c.Value)
	case float64:
		return matchNumber(c.Op, x, c.Value)
	case string:
		return matchText(c.Op, x, c.Value)
	default:
		return false
	}
}

func matchNumber(op Op, x float64, raw string) bool {
	want, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return matchText(op, strconv.FormatFloat(x, 'f', -1, 64), raw)
	}
	switch op {
	case OpExact:
		return x == want
	case OpGt:
		return x > want
	case OpGte:
		return x >= want
	case OpLt:
		return x < want
	case OpLte:
		return x <= want
	default:
		return matchText(op, strconv.FormatFloat(x, 'f', -1, 64), raw)
	}
}

func matchText(op Op, s, raw string) bool {
	ls, lraw := strings.ToLower(s), strings.ToLower(raw)
	switch op {
	case OpExact:
		return s == raw
	case OpIContains:
		return strings.Contains(ls, lraw)
	case OpIStartsWith:
		return strings.HasPrefix(ls, lraw)
	case OpIEndsWith:
		return strings.HasSuffix(ls, lraw)
	case OpGt:
		return s > raw
	case OpGte:
		return s >= raw
	case OpLt:
		return s < raw
	case OpLte:
		return s <= raw
	}
	return false
}

// less orders flattened values; nil sorts first.
func less(a, b any) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	}
	switch x := a.(type) {
	case int:
		if y, ok := b.(int); ok {
			return x < y
		}
	case float64:
		if y, ok := b.(float64); ok {
			return x < y
		}
	case bool:
		if y, ok := b.(bool); ok {
			return !x && y
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.ToLower(x) < strings.ToLower(y)
		}
	}
	return false
}
