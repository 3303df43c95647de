package persistence

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

const TasksResource = "tasks"

type TaskRepository struct {
	res *apiclient.Resource[task.Task]
}

func NewTaskRepository(client *apiclient.Client) task.Repository {
	return &TaskRepository{res: apiclient.NewResource[task.Task](client, TasksResource)}
}

func (r *TaskRepository) Fetch(ctx context.Context, req remotetable.Request) (remotetable.Result[task.Task], error) {
	page, err := r.res.List(ctx, req.Values())
	if err != nil {
		return remotetable.Result[task.Task]{}, err
	}
	return remotetable.FromPage(page), nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (task.Task, error) {
	return r.res.Get(ctx, strconv.Itoa(id))
}

func (r *TaskRepository) Create(ctx context.Context, data task.CreateDTO) (task.Task, int, error) {
	return r.res.Create(ctx, data)
}

func (r *TaskRepository) Update(ctx context.Context, id int, patch json.RawMessage) (task.Task, int, error) {
	return r.res.Update(ctx, strconv.Itoa(id), patch)
}

func (r *TaskRepository) Delete(ctx context.Context, id int) (int, error) {
	return r.res.Delete(ctx, strconv.Itoa(id))
}
