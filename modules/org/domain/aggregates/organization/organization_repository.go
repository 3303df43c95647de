package organization

import (
	"context"
	"encoding/json"

	"github.com/iota-uz/staff-console/pkg/remotetable"
)

type Repository interface {
	remotetable.Fetcher[Organization]
	GetByID(ctx context.Context, id int) (Organization, error)
	Create(ctx context.Context, data CreateDTO) (Organization, int, error)
	Update(ctx context.Context, id int, patch json.RawMessage) (Organization, int, error)
	Delete(ctx context.Context, id int) (int, error)
}
