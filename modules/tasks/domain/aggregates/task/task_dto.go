package task

import (
	"github.com/iota-uz/staff-console/pkg/serrors"
	"github.com/iota-uz/staff-console/pkg/types"
)

type CreateDTO struct {
	Summary     string     `form:"summary" json:"summary" validate:"required,max=255"`
	Description string     `form:"description" json:"description" validate:"omitempty,max=4000"`
	AssignedTo  int        `form:"assigned_to" json:"assigned_to" validate:"required,gt=0"`
	DeadLine    types.Date `form:"dead_line" json:"dead_line"`
	Comment     string     `form:"comment" json:"comment" validate:"omitempty,max=2000"`
	Attachment  *int       `form:"attachment" json:"attachment"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	errs := serrors.ValidateStruct(d)
	return errs, len(errs) == 0
}

type UpdateDTO CreateDTO

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	return (*CreateDTO)(d).Ok()
}

func NewUpdateDTO(t Task) UpdateDTO {
	dto := UpdateDTO{
		Summary:     t.Summary,
		Description: t.Description,
		DeadLine:    t.DeadLine,
		Comment:     t.Comment,
	}
	if t.AssignedTo != nil {
		dto.AssignedTo = t.AssignedTo.ID
	}
	if t.Attachment != nil && t.Attachment.ID != 0 {
		id := t.Attachment.ID
		dto.Attachment = &id
	}
	return dto
}
