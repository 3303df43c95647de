package mappers

import (
	"strconv"

	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/modules/org/presentation/viewmodels"
)

func OrganizationToViewModel(o organization.Organization) viewmodels.Organization {
	vm := viewmodels.Organization{
		ID:               strconv.Itoa(o.ID),
		FullName:         o.FullName,
		ShortName:        o.ShortName,
		INN:              o.INN,
		KPP:              o.KPP,
		OGRN:             o.OGRN,
		OKVEDCode:        o.OKVEDCode,
		OKVEDName:        o.OKVEDName,
		RegistrationDate: o.RegistrationDate.String(),
	}
	if len(o.Employees) > 0 {
		vm.Employees = strconv.Itoa(len(o.Employees))
	}
	return vm
}

func OrganizationsToViewModels(rows []organization.Organization) []viewmodels.Organization {
	out := make([]viewmodels.Organization, len(rows))
	for i, o := range rows {
		out[i] = OrganizationToViewModel(o)
	}
	return out
}
