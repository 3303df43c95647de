// Package columns describes the grid layout of every resource.
package columns

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var layoutsYAML []byte

type Column struct {
	Key        string `yaml:"key"`
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Filterable bool   `yaml:"filterable"`
	Sortable   bool   `yaml:"sortable"`
	// Lookup is the server lookup path used when filtering or ordering.
	Lookup string `yaml:"lookup"`
}

type Layout struct {
	Resource string
	Columns  []Column
}

func (l Layout) Keys() []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = c.Key
	}
	return out
}

func (l Layout) Titles() []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = c.Title
	}
	return out
}

func (l Layout) Column(key string) (Column, bool) {
	for _, c := range l.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Lookups maps column keys to server lookup paths for the table translator.
func (l Layout) Lookups() map[string]string {
	out := map[string]string{}
	for _, c := range l.Columns {
		if c.Lookup != "" {
			out[c.Key] = c.Lookup
		}
	}
	return out
}

// Title turns a snake_case key into a header, e.g. date_of_birth -> Date Of Birth.
func Title(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// Parse decodes layouts keyed by resource name.
func Parse(data []byte) (map[string]Layout, error) {
	var raw map[string][]Column
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse column layouts")
	}
	out := make(map[string]Layout, len(raw))
	for resource, cols := range raw {
		seen := map[string]bool{}
		for i := range cols {
			if cols[i].Key == "" {
				return nil, errors.Errorf("%s: column %d has no key", resource, i)
			}
			if seen[cols[i].Key] {
				return nil, errors.Errorf("%s: duplicate column %q", resource, cols[i].Key)
			}
			seen[cols[i].Key] = true
			if cols[i].Title == "" {
				cols[i].Title = Title(cols[i].Key)
			}
		}
		out[resource] = Layout{Resource: resource, Columns: cols}
	}
	return out, nil
}

var builtin = sync.OnceValues(func() (map[string]Layout, error) {
	return Parse(layoutsYAML)
})

func Get(resource string) (Layout, bool) {
	layouts, err := builtin()
	if err != nil {
		return Layout{}, false
	}
	l, ok := layouts[resource]
	return l, ok
}

func MustGet(resource string) Layout {
	layouts, err := builtin()
	if err != nil {
		panic(err)
	}
	l, ok := layouts[resource]
	if !ok {
		panic("columns: unknown resource " + resource)
	}
	return l
}

func Resources() []string {
	layouts, _ := builtin()
	out := make([]string, 0, len(layouts))
	for name := range layouts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Row is a record able to render its cells by column key.
type Row interface {
	Cell(key string) string
}

func (l Layout) Cells(r Row) []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = r.Cell(c.Key)
	}
	return out
}
