package persistence

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

const EmployeesResource = "employees"

type EmployeeRepository struct {
	res *apiclient.Resource[employee.Employee]
}

func NewEmployeeRepository(client *apiclient.Client) employee.Repository {
	return &EmployeeRepository{res: apiclient.NewResource[employee.Employee](client, EmployeesResource)}
}

func (r *EmployeeRepository) Fetch(ctx context.Context, req remotetable.Request) (remotetable.Result[employee.Employee], error) {
	page, err := r.res.List(ctx, req.Values())
	if err != nil {
		return remotetable.Result[employee.Employee]{}, err
	}
	return remotetable.FromPage(page), nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int) (employee.Employee, error) {
	return r.res.Get(ctx, strconv.Itoa(id))
}

func (r *EmployeeRepository) Create(ctx context.Context, data employee.CreateDTO) (employee.Employee, int, error) {
	return r.res.Create(ctx, data)
}

func (r *EmployeeRepository) Update(ctx context.Context, id int, patch json.RawMessage) (employee.Employee, int, error) {
	return r.res.Update(ctx, strconv.Itoa(id), patch)
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int) (int, error) {
	return r.res.Delete(ctx, strconv.Itoa(id))
}
