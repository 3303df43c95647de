package viewmodels

type Organization struct {
	ID               string
	FullName         string
	ShortName        string
	INN              string
	KPP              string
	OGRN             string
	OKVEDCode        string
	OKVEDName        string
	RegistrationDate string
	Employees        string
}

func (o Organization) Cell(key string) string {
	switch key {
	case "id":
		return o.ID
	case "full_name":
		return o.FullName
	case "short_name":
		return o.ShortName
	case "inn":
		return o.INN
	case "kpp":
		return o.KPP
	case "ogrn":
		return o.OGRN
	case "okved_code":
		return o.OKVEDCode
	case "okved_name":
		return o.OKVEDName
	case "registration_date":
		return o.RegistrationDate
	case "employees":
		return o.Employees
	}
	return ""
}
