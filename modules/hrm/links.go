package hrm

import (
	"github.com/iota-uz/staff-console/pkg/types"
)

var EmployeesLink = types.NavigationItem{
	Name: "Employees",
	Href: "employees",
}

var NavItems = []types.NavigationItem{
	EmployeesLink,
}
