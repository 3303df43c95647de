package tasks

import (
	"github.com/iota-uz/staff-console/pkg/dashboard"
	"github.com/iota-uz/staff-console/pkg/types"
)

var CompletedLink = types.NavigationItem{
	Name: dashboard.TitleCompleted,
	Href: "tasks/completed",
}

var InProcessLink = types.NavigationItem{
	Name: dashboard.TitleInProcess,
	Href: "tasks/in-process",
}

var TasksLink = types.NavigationItem{
	Name: "Tasks",
	Href: "tasks",
	Children: []types.NavigationItem{
		CompletedLink,
		InProcessLink,
	},
}

var NavItems = []types.NavigationItem{
	TasksLink,
}
