package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/pkg/eventbus"
	"github.com/iota-uz/staff-console/pkg/recordform"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

var donePatch = json.RawMessage(`{"done":true}`)

type TaskService struct {
	repo      task.Repository
	publisher eventbus.EventBus
}

func NewTaskService(repo task.Repository, publisher eventbus.EventBus) *TaskService {
	return &TaskService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TaskService) Fetch(ctx context.Context, req remotetable.Request) (remotetable.Result[task.Task], error) {
	return s.repo.Fetch(ctx, req)
}

// ViewFetcher pins the done filter of a dashboard view underneath whatever
// the user filters on.
func (s *TaskService) ViewFetcher(view task.View) remotetable.Fetcher[task.Task] {
	done, ok := view.DoneFilter()
	if !ok {
		return s
	}
	return remotetable.FetcherFunc[task.Task](func(ctx context.Context, req remotetable.Request) (remotetable.Result[task.Task], error) {
		filters := make(map[string]string, len(req.Filters)+1)
		for k, v := range req.Filters {
			filters[k] = v
		}
		filters["done"] = done
		req.Filters = filters
		return s.repo.Fetch(ctx, req)
	})
}

func (s *TaskService) GetByID(ctx context.Context, id int) (task.Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, data *task.CreateDTO) (task.Task, int, error) {
	if errs, ok := data.Ok(); !ok {
		return task.Task{}, 0, errs
	}
	created, status, err := s.repo.Create(ctx, *data)
	if err != nil {
		return task.Task{}, status, err
	}
	s.publisher.Publish(task.NewCreatedEvent(*data, created))
	return created, status, nil
}

func (s *TaskService) Update(ctx context.Context, id int, before, after *task.UpdateDTO) (task.Task, int, error) {
	if errs, ok := after.Ok(); !ok {
		return task.Task{}, 0, errs
	}
	patch, err := recordform.MergePatch(before, after)
	if err != nil {
		return task.Task{}, 0, err
	}
	if recordform.EmptyPatch(patch) {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return task.Task{}, 0, err
		}
		return current, http.StatusOK, nil
	}
	updated, status, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return task.Task{}, status, err
	}
	s.publisher.Publish(task.NewUpdatedEvent(id, patch, updated))
	return updated, status, nil
}

// MarkDone completes a task. A task cannot be reopened. The response may
// omit assigned_by, in which case the previous value is kept.
func (s *TaskService) MarkDone(ctx context.Context, current task.Task) (task.Task, int, error) {
	if current.Done {
		return current, http.StatusOK, nil
	}
	updated, status, err := s.repo.Update(ctx, current.ID, donePatch)
	if err != nil {
		return task.Task{}, status, err
	}
	if updated.AssignedBy == nil {
		updated.AssignedBy = current.AssignedBy
	}
	s.publisher.Publish(task.NewCompletedEvent(updated))
	return updated, status, nil
}

func (s *TaskService) Delete(ctx context.Context, id int) (int, error) {
	status, err := s.repo.Delete(ctx, id)
	if err != nil {
		return status, err
	}
	s.publisher.Publish(task.NewDeletedEvent(id))
	return status, nil
}
