package services

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/pkg/eventbus"
	"github.com/iota-uz/staff-console/pkg/lookup"
	"github.com/iota-uz/staff-console/pkg/recordform"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

const (
	// optionsWindow bounds how many employees one search request pulls.
	optionsWindow = 200
	// maxNameParts covers last, first and middle names.
	maxNameParts = 3
)

type EmployeeService struct {
	repo      employee.Repository
	publisher eventbus.EventBus
}

func NewEmployeeService(repo employee.Repository, publisher eventbus.EventBus) *EmployeeService {
	return &EmployeeService{
		repo:      repo,
		publisher: publisher,
	}
}

// Fetch lets the service back an employees table directly.
func (s *EmployeeService) Fetch(ctx context.Context, req remotetable.Request) (remotetable.Result[employee.Employee], error) {
	return s.repo.Fetch(ctx, req)
}

func (s *EmployeeService) GetByID(ctx context.Context, id int) (employee.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EmployeeService) Create(ctx context.Context, data *employee.CreateDTO) (employee.Employee, int, error) {
	if errs, ok := data.Ok(); !ok {
		return employee.Employee{}, 0, errs
	}
	created, status, err := s.repo.Create(ctx, *data)
	if err != nil {
		return employee.Employee{}, status, err
	}
	s.publisher.Publish(employee.NewCreatedEvent(*data, created))
	return created, status, nil
}

// Update sends only the fields that differ between before and after. An
// unchanged form re-reads the record instead of issuing an empty PATCH.
func (s *EmployeeService) Update(ctx context.Context, id int, before, after *employee.UpdateDTO) (employee.Employee, int, error) {
	if errs, ok := after.Ok(); !ok {
		return employee.Employee{}, 0, errs
	}
	patch, err := recordform.MergePatch(before, after)
	if err != nil {
		return employee.Employee{}, 0, err
	}
	if recordform.EmptyPatch(patch) {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return employee.Employee{}, 0, err
		}
		return current, http.StatusOK, nil
	}
	updated, status, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return employee.Employee{}, status, err
	}
	s.publisher.Publish(employee.NewUpdatedEvent(id, patch, updated))
	return updated, status, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id int) (int, error) {
	status, err := s.repo.Delete(ctx, id)
	if err != nil {
		return status, err
	}
	s.publisher.Publish(employee.NewDeletedEvent(id))
	return status, nil
}

// Options ranks employees by full name for assignee pickers. Every word of
// q is first searched among last names on the server; the merged matches
// are then ranked against the whole query.
func (s *EmployeeService) Options(ctx context.Context, q string, limit int) ([]lookup.Option, error) {
	words := strings.Fields(q)
	if len(words) > maxNameParts {
		words = words[:maxNameParts]
	}
	reqs := make([]remotetable.Request, 0, max(len(words), 1))
	for _, w := range words {
		reqs = append(reqs, remotetable.Request{
			Limit:    optionsWindow,
			Ordering: "last_name",
			Filters:  map[string]string{"last_name__icontains": w},
		})
	}
	if len(reqs) == 0 {
		reqs = append(reqs, remotetable.Request{Limit: optionsWindow, Ordering: "last_name"})
	}

	seen := make(map[int]bool)
	var items []lookup.Option
	for _, req := range reqs {
		res, err := s.repo.Fetch(ctx, req)
		if err != nil {
			return nil, errors.Wrap(err, "list employees")
		}
		for _, e := range res.Rows {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			items = append(items, lookup.Option{Value: strconv.Itoa(e.ID), Label: e.FullName()})
		}
	}
	return lookup.Rank(q, items, limit), nil
}
