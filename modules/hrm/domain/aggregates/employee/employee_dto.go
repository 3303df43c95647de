package employee

import (
	"github.com/iota-uz/staff-console/pkg/serrors"
	"github.com/iota-uz/staff-console/pkg/types"
)

type CreateDTO struct {
	FirstName    string     `form:"first_name" json:"first_name" validate:"required,max=150"`
	LastName     string     `form:"last_name" json:"last_name" validate:"required,max=150"`
	MiddleName   string     `form:"middle_name" json:"middle_name" validate:"omitempty,max=150"`
	Phone        string     `form:"phone" json:"phone" validate:"omitempty,max=20"`
	Age          int        `form:"age" json:"age" validate:"gte=14,lte=120"`
	Email        string     `form:"email" json:"email" validate:"required,email"`
	DateOfBirth  types.Date `form:"date_of_birth" json:"date_of_birth"`
	Sex          Sex        `form:"sex" json:"sex" validate:"omitempty,oneof=male female"`
	Organization *int       `form:"organization" json:"organization"`
	Attachment   *int       `form:"attachment" json:"attachment"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	errs := serrors.ValidateStruct(d)
	if d.DateOfBirth.IsZero() {
		if errs == nil {
			errs = serrors.ValidationErrors{}
		}
		errs["date_of_birth"] = "date_of_birth is a required field"
	}
	return errs, len(errs) == 0
}

// UpdateDTO carries every editable field. Only fields that differ from the
// stored record are sent.
type UpdateDTO CreateDTO

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	return (*CreateDTO)(d).Ok()
}

// NewUpdateDTO prefills the edit form from a stored employee.
func NewUpdateDTO(e Employee) UpdateDTO {
	var attachment *int
	if e.Attachment != nil && e.Attachment.ID != 0 {
		id := e.Attachment.ID
		attachment = &id
	}
	return UpdateDTO{
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		MiddleName:   e.MiddleName,
		Phone:        e.Phone,
		Age:          e.Age,
		Email:        e.Email,
		DateOfBirth:  e.DateOfBirth,
		Sex:          e.Sex,
		Organization: e.Organization,
		Attachment:   attachment,
	}
}
