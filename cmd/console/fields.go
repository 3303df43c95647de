package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/form"

	"github.com/iota-uz/staff-console/pkg/types"
)

var formDecoder = sync.OnceValue(func() *form.Decoder {
	d := form.NewDecoder()
	d.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		if vals[0] == "" {
			return types.Date{}, nil
		}
		return types.ParseDate(vals[0])
	}, types.Date{})
	return d
})

// parseAssignments reads repeated key=value pairs.
func parseAssignments(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want field=value", pair)
		}
		values.Set(key, value)
	}
	return values, nil
}

// formFields maps form tags of a struct to field indexes.
func formFields(t reflect.Type) map[string]int {
	out := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("form"), ",", 2)[0]
		if name != "" && name != "-" {
			out[name] = i
		}
	}
	return out
}

// decodeAssignments applies values onto dst, a pointer to a DTO. Unknown
// fields are rejected and an empty value clears the field.
func decodeAssignments(dst any, values url.Values) error {
	v := reflect.ValueOf(dst).Elem()
	fields := formFields(v.Type())
	var unknown []string
	for key := range values {
		if _, ok := fields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		known := make([]string, 0, len(fields))
		for key := range fields {
			known = append(known, key)
		}
		sort.Strings(known)
		return fmt.Errorf("unknown field(s) %s; known: %s", strings.Join(unknown, ", "), strings.Join(known, ", "))
	}
	if err := formDecoder().Decode(dst, values); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	for key := range values {
		if values.Get(key) == "" {
			f := v.Field(fields[key])
			f.Set(reflect.Zero(f.Type()))
		}
	}
	return nil
}

// cloneDTO deep-copies a DTO so edits never reach the original's pointers.
func cloneDTO[D any](d D) (D, error) {
	var out D
	b, err := json.Marshal(d)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}
