package user

import (
	"strings"

	"github.com/iota-uz/staff-console/pkg/serrors"
)

type SignInDTO struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
	Remember bool   `form:"remember" json:"-"`
}

func (d *SignInDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Email = strings.TrimSpace(d.Email)
	errs := serrors.ValidateStruct(d)
	return errs, len(errs) == 0
}

// SignUpDTO is the self-registration form.
type SignUpDTO struct {
	FirstName string `form:"first_name" json:"first_name" validate:"required,max=150"`
	LastName  string `form:"last_name" json:"last_name" validate:"required,max=150"`
	Email     string `form:"email" json:"email" validate:"required,email"`
	Password  string `form:"password" json:"password" validate:"required,min=8"`
	Mailing   bool   `form:"mailing" json:"mailing"`
}

func (d *SignUpDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Email = strings.TrimSpace(d.Email)
	errs := serrors.ValidateStruct(d)
	return errs, len(errs) == 0
}

// Account is what the registration endpoint echoes back.
type Account struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Mailing   bool   `json:"mailing"`
}
