package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/pkg/remotetable"
	"github.com/iota-uz/staff-console/pkg/serrors"
	"github.com/iota-uz/staff-console/pkg/types"
)

type mockEmployeeRepo struct {
	called    bool
	rows      []employee.Employee
	lastReq   remotetable.Request
	reqs      []remotetable.Request
	lastPatch json.RawMessage
	err       error
}

func (m *mockEmployeeRepo) mark() { m.called = true }

func (m *mockEmployeeRepo) Fetch(ctx context.Context, req remotetable.Request) (remotetable.Result[employee.Employee], error) {
	m.mark()
	m.lastReq = req
	m.reqs = append(m.reqs, req)
	return remotetable.Result[employee.Employee]{Rows: m.rows, TotalCount: len(m.rows)}, m.err
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id int) (employee.Employee, error) {
	m.mark()
	return employee.Employee{ID: id, FirstName: "Stored"}, m.err
}

func (m *mockEmployeeRepo) Create(ctx context.Context, data employee.CreateDTO) (employee.Employee, int, error) {
	m.mark()
	if m.err != nil {
		return employee.Employee{}, http.StatusBadRequest, m.err
	}
	return employee.Employee{ID: 7, FirstName: data.FirstName, LastName: data.LastName}, http.StatusCreated, nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, id int, patch json.RawMessage) (employee.Employee, int, error) {
	m.mark()
	m.lastPatch = patch
	return employee.Employee{ID: id}, http.StatusOK, m.err
}

func (m *mockEmployeeRepo) Delete(ctx context.Context, id int) (int, error) {
	m.mark()
	return http.StatusNoContent, m.err
}

type stubPublisher struct {
	events []any
}

func (s *stubPublisher) Publish(args ...any)          { s.events = append(s.events, args...) }
func (s *stubPublisher) PublishE(args ...any) error   { s.Publish(args...); return nil }
func (s *stubPublisher) Subscribe(handler any) func() { return func() {} }
func (s *stubPublisher) SubscribersCount() int        { return 0 }

func validCreateDTO() *employee.CreateDTO {
	return &employee.CreateDTO{
		FirstName:   "Ann",
		LastName:    "Lee",
		Age:         30,
		Email:       "ann@example.com",
		DateOfBirth: types.NewDate(1995, 4, 2),
	}
}

func TestEmployeeService_CreateRejectsInvalidDTO(t *testing.T) {
	repo := &mockEmployeeRepo{}
	pub := &stubPublisher{}
	svc := NewEmployeeService(repo, pub)

	_, _, err := svc.Create(context.Background(), &employee.CreateDTO{})
	require.Error(t, err)

	var verrs serrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Contains(t, verrs, "first_name")
	require.Contains(t, verrs, "date_of_birth")
	require.False(t, repo.called, "repository should not be called when validation fails")
	require.Empty(t, pub.events)
}

func TestEmployeeService_CreatePublishes(t *testing.T) {
	repo := &mockEmployeeRepo{}
	pub := &stubPublisher{}
	svc := NewEmployeeService(repo, pub)

	created, status, err := svc.Create(context.Background(), validCreateDTO())
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, 7, created.ID)
	require.Len(t, pub.events, 1)

	ev, ok := pub.events[0].(*employee.CreatedEvent)
	require.True(t, ok)
	require.Equal(t, "Ann", ev.Data.FirstName)
	require.Equal(t, 7, ev.Result.ID)
}

func TestEmployeeService_CreateFailureDoesNotPublish(t *testing.T) {
	repo := &mockEmployeeRepo{err: errors.New("boom")}
	pub := &stubPublisher{}
	svc := NewEmployeeService(repo, pub)

	_, _, err := svc.Create(context.Background(), validCreateDTO())
	require.Error(t, err)
	require.Empty(t, pub.events)
}

func TestEmployeeService_UpdateSendsOnlyChangedFields(t *testing.T) {
	repo := &mockEmployeeRepo{}
	pub := &stubPublisher{}
	svc := NewEmployeeService(repo, pub)

	before := employee.UpdateDTO(*validCreateDTO())
	after := before
	after.Phone = "+998901234567"

	_, status, err := svc.Update(context.Background(), 3, &before, &after)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"phone":"+998901234567"}`, string(repo.lastPatch))
	require.Len(t, pub.events, 1)
	require.IsType(t, &employee.UpdatedEvent{}, pub.events[0])
}

func TestEmployeeService_UpdateWithoutChangesRereads(t *testing.T) {
	repo := &mockEmployeeRepo{}
	pub := &stubPublisher{}
	svc := NewEmployeeService(repo, pub)

	before := employee.UpdateDTO(*validCreateDTO())
	after := before

	got, status, err := svc.Update(context.Background(), 3, &before, &after)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Stored", got.FirstName)
	require.Nil(t, repo.lastPatch)
	require.Empty(t, pub.events)
}

func TestEmployeeService_DeletePublishes(t *testing.T) {
	repo := &mockEmployeeRepo{}
	pub := &stubPublisher{}
	svc := NewEmployeeService(repo, pub)

	status, err := svc.Delete(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, status)
	require.Equal(t, []any{employee.NewDeletedEvent(5)}, pub.events)
}

func TestEmployeeService_Options(t *testing.T) {
	repo := &mockEmployeeRepo{rows: []employee.Employee{
		{ID: 1, FirstName: "Ann", LastName: "Lee"},
		{ID: 2, FirstName: "Bob", LastName: "Stone"},
		{ID: 3, FirstName: "Leila", LastName: "Karimova"},
	}}
	svc := NewEmployeeService(repo, &stubPublisher{})

	opts, err := svc.Options(context.Background(), "stone", 5)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	require.Equal(t, "2", opts[0].Value)
	require.Equal(t, "Stone Bob", opts[0].Label)
	require.Equal(t, "last_name", repo.lastReq.Ordering)
	require.Equal(t, map[string]string{"last_name__icontains": "stone"}, repo.lastReq.Filters)
}

func TestEmployeeService_OptionsSearchesEachWord(t *testing.T) {
	repo := &mockEmployeeRepo{rows: []employee.Employee{
		{ID: 1, FirstName: "Ann", LastName: "Lee"},
		{ID: 2, FirstName: "Bob", LastName: "Stone"},
	}}
	svc := NewEmployeeService(repo, &stubPublisher{})

	opts, err := svc.Options(context.Background(), "Stone Bob", 5)
	require.NoError(t, err)
	require.Len(t, repo.reqs, 2)
	require.Equal(t, map[string]string{"last_name__icontains": "Stone"}, repo.reqs[0].Filters)
	require.Equal(t, map[string]string{"last_name__icontains": "Bob"}, repo.reqs[1].Filters)
	require.Len(t, opts, 1)
	require.Equal(t, "2", opts[0].Value)

	repo.reqs = nil
	opts, err = svc.Options(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, repo.reqs, 1)
	require.Empty(t, repo.reqs[0].Filters)
	require.Len(t, opts, 2)
}
