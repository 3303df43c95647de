// Package dashboard holds the shared page title and the console menu.
package dashboard

import (
	"strings"
	"sync"

	"github.com/iota-uz/staff-console/pkg/types"
)

const (
	TitleCompleted = "Completed tasks"
	TitleInProcess = "Tasks in process"
)

// Title is the read side of the dashboard heading.
type Title struct {
	document string

	mu   sync.RWMutex
	page string
}

// TitleSetter is the single writer of a Title.
type TitleSetter func(page string)

// NewTitle returns the title handed to readers and the only function able
// to change it.
func NewTitle(document string) (*Title, TitleSetter) {
	t := &Title{document: document}
	return t, t.set
}

func (t *Title) set(page string) {
	t.mu.Lock()
	t.page = strings.TrimSpace(page)
	t.mu.Unlock()
}

func (t *Title) Page() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.page
}

// Heading is "<document> | <page>", or just the document title.
func (t *Title) Heading() string {
	page := t.Page()
	if page == "" {
		return t.document
	}
	if t.document == "" {
		return page
	}
	return t.document + " | " + page
}

func Navigation() []types.NavigationItem {
	return []types.NavigationItem{
		{Name: "Employees", Href: "employees"},
		{Name: "Organizations", Href: "organizations"},
		{
			Name: "Tasks",
			Href: "tasks",
			Children: []types.NavigationItem{
				{Name: TitleCompleted, Href: "tasks/completed"},
				{Name: TitleInProcess, Href: "tasks/in-process"},
			},
		},
	}
}

// Resolve finds the menu item for a route.
func Resolve(href string) (types.NavigationItem, bool) {
	for _, item := range Navigation() {
		if found, ok := item.Find(href); ok {
			return found, true
		}
	}
	return types.NavigationItem{}, false
}
