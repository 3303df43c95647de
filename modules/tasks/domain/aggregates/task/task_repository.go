package task

import (
	"context"
	"encoding/json"

	"github.com/iota-uz/staff-console/pkg/remotetable"
)

type Repository interface {
	remotetable.Fetcher[Task]
	GetByID(ctx context.Context, id int) (Task, error)
	Create(ctx context.Context, data CreateDTO) (Task, int, error)
	Update(ctx context.Context, id int, patch json.RawMessage) (Task, int, error)
	Delete(ctx context.Context, id int) (int, error)
}
