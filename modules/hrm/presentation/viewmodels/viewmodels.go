package viewmodels

type Employee struct {
	ID               string
	FirstName        string
	LastName         string
	MiddleName       string
	Phone            string
	Age              string
	Email            string
	Sex              string
	DateOfBirth      string
	RegistrationDate string
	Organization     string
	Attachment       string
}

func (e Employee) Cell(key string) string {
	switch key {
	case "id":
		return e.ID
	case "first_name":
		return e.FirstName
	case "last_name":
		return e.LastName
	case "middle_name":
		return e.MiddleName
	case "phone":
		return e.Phone
	case "age":
		return e.Age
	case "email":
		return e.Email
	case "sex":
		return e.Sex
	case "date_of_birth":
		return e.DateOfBirth
	case "registration_date":
		return e.RegistrationDate
	case "organization":
		return e.Organization
	case "attachment":
		return e.Attachment
	default:
		return ""
	}
}
