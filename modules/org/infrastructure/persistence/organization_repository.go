package persistence

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/remotetable"
)

const OrganizationsResource = "organizations"

type OrganizationRepository struct {
	res *apiclient.Resource[organization.Organization]
}

func NewOrganizationRepository(client *apiclient.Client) organization.Repository {
	return &OrganizationRepository{
		res: apiclient.NewResource[organization.Organization](client, OrganizationsResource),
	}
}

func (r *OrganizationRepository) Fetch(ctx context.Context, req remotetable.Request) (remotetable.Result[organization.Organization], error) {
	page, err := r.res.List(ctx, req.Values())
	if err != nil {
		return remotetable.Result[organization.Organization]{}, err
	}
	return remotetable.FromPage(page), nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int) (organization.Organization, error) {
	return r.res.Get(ctx, strconv.Itoa(id))
}

func (r *OrganizationRepository) Create(ctx context.Context, data organization.CreateDTO) (organization.Organization, int, error) {
	return r.res.Create(ctx, data)
}

func (r *OrganizationRepository) Update(ctx context.Context, id int, patch json.RawMessage) (organization.Organization, int, error) {
	return r.res.Update(ctx, strconv.Itoa(id), patch)
}

func (r *OrganizationRepository) Delete(ctx context.Context, id int) (int, error) {
	return r.res.Delete(ctx, strconv.Itoa(id))
}
