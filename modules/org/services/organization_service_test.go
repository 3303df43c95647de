package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/pkg/eventbus"
	"github.com/iota-uz/staff-console/pkg/remotetable"
	"github.com/iota-uz/staff-console/pkg/serrors"
)

type mockOrganizationRepo struct {
	rows    []organization.Organization
	fetches int
	patch   json.RawMessage
}

func (m *mockOrganizationRepo) Fetch(ctx context.Context, req remotetable.Request) (remotetable.Result[organization.Organization], error) {
	m.fetches++
	return remotetable.Result[organization.Organization]{Rows: m.rows, TotalCount: len(m.rows)}, nil
}

func (m *mockOrganizationRepo) GetByID(ctx context.Context, id int) (organization.Organization, error) {
	return organization.Organization{ID: id}, nil
}

func (m *mockOrganizationRepo) Create(ctx context.Context, data organization.CreateDTO) (organization.Organization, int, error) {
	o := organization.Organization{ID: len(m.rows) + 1, ShortName: data.ShortName, FullName: data.FullName}
	m.rows = append(m.rows, o)
	return o, http.StatusCreated, nil
}

func (m *mockOrganizationRepo) Update(ctx context.Context, id int, patch json.RawMessage) (organization.Organization, int, error) {
	m.patch = patch
	return organization.Organization{ID: id}, http.StatusOK, nil
}

func (m *mockOrganizationRepo) Delete(ctx context.Context, id int) (int, error) {
	return http.StatusNoContent, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func validDTO() *organization.CreateDTO {
	return &organization.CreateDTO{
		FullName:  "Acme Limited Liability Company",
		ShortName: "Acme",
		INN:       "7707083893",
		KPP:       "773601001",
		OGRN:      "1027700132195",
	}
}

func TestCreateDTO_Ok(t *testing.T) {
	_, ok := validDTO().Ok()
	require.True(t, ok)

	cases := map[string]func(d *organization.CreateDTO){
		"inn":        func(d *organization.CreateDTO) { d.INN = "12345" },
		"kpp":        func(d *organization.CreateDTO) { d.KPP = "77360100A" },
		"ogrn":       func(d *organization.CreateDTO) { d.OGRN = "10277001321" },
		"short_name": func(d *organization.CreateDTO) { d.ShortName = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			d := validDTO()
			mutate(d)
			errs, ok := d.Ok()
			require.False(t, ok)
			require.Contains(t, errs, field)
		})
	}
}

func TestOrganizationService_CreateValidates(t *testing.T) {
	repo := &mockOrganizationRepo{}
	svc := NewOrganizationService(repo, eventbus.NewEventPublisher(quietLogger()), quietLogger())

	_, _, err := svc.Create(context.Background(), &organization.CreateDTO{})
	var verrs serrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Empty(t, repo.rows)
}

func TestOrganizationService_UpdatePatch(t *testing.T) {
	repo := &mockOrganizationRepo{}
	svc := NewOrganizationService(repo, eventbus.NewEventPublisher(quietLogger()), quietLogger())

	before := organization.UpdateDTO(*validDTO())
	after := before
	after.OKVEDCode = "62.01"

	_, status, err := svc.Update(context.Background(), 2, &before, &after)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"okved_code":"62.01"}`, string(repo.patch))
}

func TestOrganizationService_OptionsAreCachedUntilInvalidated(t *testing.T) {
	repo := &mockOrganizationRepo{rows: []organization.Organization{
		{ID: 1, ShortName: "Acme"},
		{ID: 2, FullName: "Globex Corporation"},
	}}
	svc := NewOrganizationService(repo, eventbus.NewEventPublisher(quietLogger()), quietLogger())
	ctx := context.Background()

	opts, err := svc.Options(ctx, "glo", 10)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	require.Equal(t, "Globex Corporation", opts[0].Label)

	_, err = svc.Options(ctx, "", 10)
	require.NoError(t, err)
	require.Equal(t, 1, repo.fetches)

	svc.InvalidateOptions("test")
	opts, err = svc.Options(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	require.Equal(t, 2, repo.fetches)
}

func TestOrganizationService_Resolve(t *testing.T) {
	repo := &mockOrganizationRepo{rows: []organization.Organization{{ID: 9, ShortName: "Acme"}}}
	svc := NewOrganizationService(repo, eventbus.NewEventPublisher(quietLogger()), quietLogger())
	ctx := context.Background()

	id, err := svc.Resolve(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, 9, id)

	id, err = svc.Resolve(ctx, "12")
	require.NoError(t, err)
	require.Equal(t, 12, id)

	_, err = svc.Resolve(ctx, "Initech")
	require.ErrorIs(t, err, ErrUnknownOrganization)
}
