package employee

import (
	"context"
	"encoding/json"

	"github.com/iota-uz/staff-console/pkg/remotetable"
)

type Repository interface {
	remotetable.Fetcher[Employee]
	GetByID(ctx context.Context, id int) (Employee, error)
	Create(ctx context.Context, data CreateDTO) (Employee, int, error)
	Update(ctx context.Context, id int, patch json.RawMessage) (Employee, int, error)
	Delete(ctx context.Context, id int) (int, error)
}
