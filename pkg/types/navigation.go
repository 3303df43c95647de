package types

// NavigationItem is one entry of the dashboard menu. Href is the console
// route that opens it.
type NavigationItem struct {
	Name     string
	Href     string
	Children []NavigationItem
}

// Find returns the item whose Href equals href, searching children too.
func (n NavigationItem) Find(href string) (NavigationItem, bool) {
	if n.Href == href {
		return n, true
	}
	for _, child := range n.Children {
		if found, ok := child.Find(href); ok {
			return found, true
		}
	}
	return NavigationItem{}, false
}
