package organization

import (
	"strconv"

	"github.com/iota-uz/staff-console/pkg/types"
)

// Member is the short employee record nested in an organization.
type Member struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Organization struct {
	ID               int        `json:"id"`
	FullName         string     `json:"full_name"`
	ShortName        string     `json:"short_name"`
	RegistrationDate types.Date `json:"registration_date"`
	INN              string     `json:"inn"`
	KPP              string     `json:"kpp"`
	OGRN             string     `json:"ogrn"`
	OKVEDCode        string     `json:"okved_code"`
	OKVEDName        string     `json:"okved_name"`
	Employees        []Member   `json:"employees,omitempty"`
}

func (o Organization) Key() string {
	return strconv.Itoa(o.ID)
}

// DisplayName prefers the short name.
func (o Organization) DisplayName() string {
	if o.ShortName != "" {
		return o.ShortName
	}
	return o.FullName
}
