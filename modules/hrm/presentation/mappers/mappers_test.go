package mappers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/pkg/types"
)

func TestEmployeeToViewModel(t *testing.T) {
	org := 4
	vm := EmployeeToViewModel(employee.Employee{
		ID:           12,
		FirstName:    "Ann",
		LastName:     "Lee",
		Age:          31,
		Sex:          employee.Female,
		DateOfBirth:  types.NewDate(1993, 1, 9),
		Organization: &org,
		Attachment:   &types.Attachment{FileName: "cv.pdf", FileSize: 2048},
	})

	require.Equal(t, "12", vm.Cell("id"))
	require.Equal(t, "31", vm.Cell("age"))
	require.Equal(t, "Female", vm.Cell("sex"))
	require.Equal(t, "1993-01-09", vm.Cell("date_of_birth"))
	require.Equal(t, "#4", vm.Cell("organization"))
	require.Contains(t, vm.Cell("attachment"), "cv.pdf")
	require.Empty(t, vm.Cell("registration_date"))
	require.Empty(t, vm.Cell("unknown"))
}

func TestEmployeeToViewModel_PrefersOrganizationName(t *testing.T) {
	org := 4
	vm := EmployeeToViewModel(employee.Employee{Organization: &org, OrganizationName: "Acme"})
	require.Equal(t, "Acme", vm.Organization)
	require.Empty(t, vm.Age)
}
