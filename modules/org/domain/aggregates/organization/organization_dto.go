package organization

import (
	"github.com/iota-uz/staff-console/pkg/serrors"
	"github.com/iota-uz/staff-console/pkg/types"
)

type CreateDTO struct {
	FullName         string     `form:"full_name" json:"full_name" validate:"required,max=500"`
	ShortName        string     `form:"short_name" json:"short_name" validate:"required,max=255"`
	RegistrationDate types.Date `form:"registration_date" json:"registration_date"`
	INN              string     `form:"inn" json:"inn" validate:"required,numeric"`
	KPP              string     `form:"kpp" json:"kpp" validate:"omitempty,numeric,len=9"`
	OGRN             string     `form:"ogrn" json:"ogrn" validate:"omitempty,numeric"`
	OKVEDCode        string     `form:"okved_code" json:"okved_code" validate:"omitempty,max=16"`
	OKVEDName        string     `form:"okved_name" json:"okved_name" validate:"omitempty,max=500"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	errs := serrors.ValidateStruct(d)
	if errs == nil {
		errs = serrors.ValidationErrors{}
	}
	// INN is 10 digits for companies and 12 for individual entrepreneurs;
	// OGRN follows the same split with 13 and 15.
	if _, bad := errs["inn"]; !bad && d.INN != "" && len(d.INN) != 10 && len(d.INN) != 12 {
		errs["inn"] = "inn must be 10 or 12 digits"
	}
	if _, bad := errs["ogrn"]; !bad && d.OGRN != "" && len(d.OGRN) != 13 && len(d.OGRN) != 15 {
		errs["ogrn"] = "ogrn must be 13 or 15 digits"
	}
	return errs, len(errs) == 0
}

type UpdateDTO CreateDTO

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	return (*CreateDTO)(d).Ok()
}

func NewUpdateDTO(o Organization) UpdateDTO {
	return UpdateDTO{
		FullName:         o.FullName,
		ShortName:        o.ShortName,
		RegistrationDate: o.RegistrationDate,
		INN:              o.INN,
		KPP:              o.KPP,
		OGRN:             o.OGRN,
		OKVEDCode:        o.OKVEDCode,
		OKVEDName:        o.OKVEDName,
	}
}
