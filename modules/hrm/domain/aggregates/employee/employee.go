package employee

import (
	"strconv"
	"strings"

	"github.com/iota-uz/staff-console/pkg/types"
)

type Sex string

const (
	Male        Sex = "male"
	Female      Sex = "female"
	Unspecified Sex = ""
)

func (s Sex) Label() string {
	switch s {
	case Male:
		return "Male"
	case Female:
		return "Female"
	default:
		return ""
	}
}

type Employee struct {
	ID               int               `json:"id"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	MiddleName       string            `json:"middle_name"`
	Phone            string            `json:"phone"`
	Age              int               `json:"age"`
	Email            string            `json:"email"`
	DateOfBirth      types.Date        `json:"date_of_birth"`
	RegistrationDate types.Date        `json:"registration_date"`
	Sex              Sex               `json:"sex"`
	Organization     *int              `json:"organization"`
	OrganizationName string            `json:"organization_name,omitempty"`
	Attachment       *types.Attachment `json:"attachment"`
}

func (e Employee) Key() string {
	return strconv.Itoa(e.ID)
}

// FullName is "Last First Middle" without empty parts.
func (e Employee) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.LastName, e.FirstName, e.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
