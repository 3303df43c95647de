// Package lookup ranks options of select-with-search inputs, e.g. the
// organization of an employee or the assignee of a task.
package lookup

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options is a fuzzy-searchable set of options.
type Options struct {
	mu    sync.RWMutex
	items []Option
}

func NewOptions(items ...Option) *Options {
	o := &Options{}
	o.Add(items...)
	return o
}

func (o *Options) Add(items ...Option) {
	o.mu.Lock()
	o.items = append(o.items, items...)
	o.mu.Unlock()
}

func (o *Options) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.items)
}

// Find returns the options whose label fuzzily matches q, best first.
// An empty query returns every option in insertion order.
func (o *Options) Find(q string, limit int) []Option {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return Rank(q, o.items, limit)
}

// Rank orders items by fuzzy match distance of their labels to q.
func Rank(q string, items []Option, limit int) []Option {
	q = strings.TrimSpace(q)
	if q == "" {
		out := append([]Option(nil), items...)
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	words := make([]string, len(items))
	for i, it := range items {
		words[i] = it.Label
	}
	ranks := fuzzy.RankFindNormalizedFold(q, words)
	sort.Stable(ranks)

	result := make([]Option, 0, len(ranks))
	for _, rank := range ranks {
		result = append(result, items[rank.OriginalIndex])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

// Exact finds the option whose label or value equals s, ignoring case.
func (o *Options) Exact(s string) (Option, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, it := range o.items {
		if strings.EqualFold(it.Label, s) || it.Value == s {
			return it, true
		}
	}
	return Option{}, false
}
