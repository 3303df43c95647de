package mappers

import (
	"strconv"

	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/modules/hrm/presentation/viewmodels"
)

func EmployeeToViewModel(e employee.Employee) viewmodels.Employee {
	vm := viewmodels.Employee{
		ID:               strconv.Itoa(e.ID),
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		MiddleName:       e.MiddleName,
		Phone:            e.Phone,
		Email:            e.Email,
		Sex:              e.Sex.Label(),
		DateOfBirth:      e.DateOfBirth.String(),
		RegistrationDate: e.RegistrationDate.String(),
		Organization:     e.OrganizationName,
	}
	if e.Age > 0 {
		vm.Age = strconv.Itoa(e.Age)
	}
	if vm.Organization == "" && e.Organization != nil {
		vm.Organization = "#" + strconv.Itoa(*e.Organization)
	}
	if e.Attachment != nil {
		vm.Attachment = e.Attachment.FileName + " (" + e.Attachment.HumanSize() + ")"
	}
	return vm
}

func EmployeesToViewModels(rows []employee.Employee) []viewmodels.Employee {
	out := make([]viewmodels.Employee, len(rows))
	for i, e := range rows {
		out[i] = EmployeeToViewModel(e)
	}
	return out
}
