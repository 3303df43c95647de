package org

import "github.com/iota-uz/staff-console/pkg/types"

var OrganizationsLink = types.NavigationItem{
	Name: "Organizations",
	Href: "organizations",
}

var NavItems = []types.NavigationItem{
	OrganizationsLink,
}
