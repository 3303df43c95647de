package mappers

import (
	"strconv"

	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/modules/tasks/presentation/viewmodels"
)

func TaskToViewModel(t task.Task) viewmodels.Task {
	vm := viewmodels.Task{
		ID:          strconv.Itoa(t.ID),
		Summary:     t.Summary,
		Description: t.Description,
		DateOfIssue: t.DateOfIssue.String(),
		DeadLine:    t.DeadLine.String(),
		Comment:     t.Comment,
		Done:        "no",
	}
	if t.Done {
		vm.Done = "yes"
	}
	if t.AssignedTo != nil {
		vm.AssignedTo = t.AssignedTo.String()
	}
	if t.AssignedBy != nil {
		vm.AssignedBy = t.AssignedBy.String()
	}
	if t.Attachment != nil {
		vm.Attachment = t.Attachment.FileName
	}
	return vm
}

func TasksToViewModels(rows []task.Task) []viewmodels.Task {
	out := make([]viewmodels.Task, len(rows))
	for i, t := range rows {
		out[i] = TaskToViewModel(t)
	}
	return out
}
