package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	authpersistence "github.com/iota-uz/staff-console/modules/core/infrastructure/persistence"
	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	hrmpersistence "github.com/iota-uz/staff-console/modules/hrm/infrastructure/persistence"
	orgpersistence "github.com/iota-uz/staff-console/modules/org/infrastructure/persistence"
	taskpersistence "github.com/iota-uz/staff-console/modules/tasks/infrastructure/persistence"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/remotetable"
	"github.com/iota-uz/staff-console/pkg/types"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func startServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	opts.BcryptCost = bcrypt.MinCost
	opts.Logger = quietLogger()
	if opts.Seed.Employees == 0 {
		opts.Seed.Employees = 42
	}
	opts.Now = func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) }
	s, err := New(opts)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func newClient(t *testing.T, srv *httptest.Server, maxUpload int64) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(apiclient.Options{
		BaseURL:         srv.URL + "/api",
		RequestIDHeader: "X-Request-ID",
		MaxUploadSize:   maxUpload,
		Logger:          quietLogger(),
	})
	require.NoError(t, err)
	return c
}

func loginAdmin(t *testing.T, c *apiclient.Client) string {
	t.Helper()
	token, err := authpersistence.NewAuthRepository(c).Login(context.Background(), AdminEmail, AdminPassword)
	require.NoError(t, err)
	c.SetTokens(apiclient.StaticToken(token))
	return token
}

func signedIn(t *testing.T, srv *httptest.Server) *apiclient.Client {
	t.Helper()
	c := newClient(t, srv, 1<<20)
	loginAdmin(t, c)
	return c
}

func TestServer_EmployeesPage(t *testing.T) {
	_, srv := startServer(t, Options{})
	repo := hrmpersistence.NewEmployeeRepository(signedIn(t, srv))

	res, err := repo.Fetch(context.Background(), remotetable.Request{Limit: 10, Offset: 0})
	require.NoError(t, err)
	require.Equal(t, 42, res.TotalCount)
	require.Len(t, res.Rows, 10)
	require.Equal(t, 1, res.Rows[0].ID)

	res, err = repo.Fetch(context.Background(), remotetable.Request{Limit: 10, Offset: 40})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
}

func TestServer_EmployeesFilterAndOrdering(t *testing.T) {
	_, srv := startServer(t, Options{})
	repo := hrmpersistence.NewEmployeeRepository(signedIn(t, srv))

	res, err := repo.Fetch(context.Background(), remotetable.Request{
		Limit:    50,
		Filters:  map[string]string{"organization__short_name__icontains": "AUR"},
		Ordering: "-age",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Rows)
	require.Equal(t, len(res.Rows), res.TotalCount)
	for i, e := range res.Rows {
		require.Equal(t, "Aurora", e.OrganizationName)
		if i > 0 {
			require.GreaterOrEqual(t, res.Rows[i-1].Age, e.Age)
		}
	}

	_, err = repo.Fetch(context.Background(), remotetable.Request{Limit: 10, Filters: map[string]string{"salary": "1"}})
	require.True(t, apiclient.IsKind(err, apiclient.KindValidation), "got %v", err)
}

func TestServer_RequiresToken(t *testing.T) {
	_, srv := startServer(t, Options{})
	repo := hrmpersistence.NewEmployeeRepository(newClient(t, srv, 1<<20))

	_, err := repo.Fetch(context.Background(), remotetable.Request{Limit: 10})
	require.True(t, apiclient.IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, "authentication credentials were not provided", apiclient.UserMessage(err))
}

func TestServer_RejectsBadCredentials(t *testing.T) {
	_, srv := startServer(t, Options{})
	_, err := authpersistence.NewAuthRepository(newClient(t, srv, 1<<20)).Login(context.Background(), AdminEmail, "wrong")
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
	require.Equal(t, ErrInvalidCredentials.Error(), apiclient.UserMessage(err))
}

func TestServer_RegisterThenLogin(t *testing.T) {
	_, srv := startServer(t, Options{})
	c := newClient(t, srv, 1<<20)
	repo := authpersistence.NewAuthRepository(c)

	acc, status, err := repo.Register(context.Background(), user.SignUpDTO{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "password1",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "ann@example.com", acc.Email)

	_, _, err = repo.Register(context.Background(), user.SignUpDTO{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "password1",
	})
	require.Equal(t, map[string]string{"email": ErrEmailTaken.Error()}, apiclient.FieldErrors(err))

	token, err := repo.Login(context.Background(), "ann@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestServer_EmployeeLifecycle(t *testing.T) {
	_, srv := startServer(t, Options{})
	repo := hrmpersistence.NewEmployeeRepository(signedIn(t, srv))
	ctx := context.Background()

	_, _, err := repo.Create(ctx, employee.CreateDTO{FirstName: "Zed"})
	require.True(t, apiclient.IsKind(err, apiclient.KindValidation))
	require.Contains(t, apiclient.FieldErrors(err), "email")

	org := 2
	created, status, err := repo.Create(ctx, employee.CreateDTO{
		FirstName:    "Zed",
		LastName:     "Orlov",
		Age:          33,
		Email:        "zed@example.com",
		DateOfBirth:  types.NewDate(1990, time.May, 4),
		Organization: &org,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, 43, created.ID)
	require.Equal(t, "Baikal", created.OrganizationName)
	require.Equal(t, types.NewDate(2024, time.March, 1), created.RegistrationDate)

	updated, status, err := repo.Update(ctx, created.ID, json.RawMessage(`{"first_name":"Zack","organization":null}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Zack", updated.FirstName)
	require.Equal(t, "Orlov", updated.LastName)
	require.Nil(t, updated.Organization)

	_, _, err = repo.Update(ctx, created.ID, json.RawMessage(`{"age":3}`))
	require.Contains(t, apiclient.FieldErrors(err), "age")

	status, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, status)

	_, err = repo.GetByID(ctx, created.ID)
	require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
}

func TestServer_OrganizationValidation(t *testing.T) {
	_, srv := startServer(t, Options{})
	repo := orgpersistence.NewOrganizationRepository(signedIn(t, srv))

	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Aurora", got.ShortName)
	require.NotEmpty(t, got.Employees)

	_, _, err = repo.Update(context.Background(), 1, json.RawMessage(`{"inn":"123"}`))
	require.Equal(t, map[string]string{"inn": "inn must be 10 or 12 digits"}, apiclient.FieldErrors(err))
}

func TestServer_TasksDoneFilterAndPatch(t *testing.T) {
	_, srv := startServer(t, Options{})
	repo := taskpersistence.NewTaskRepository(signedIn(t, srv))
	ctx := context.Background()

	done, err := repo.Fetch(ctx, remotetable.Request{Limit: 50, Filters: map[string]string{"done": "true"}})
	require.NoError(t, err)
	require.Equal(t, 4, done.TotalCount)

	open, err := repo.Fetch(ctx, remotetable.Request{Limit: 50, Filters: map[string]string{"done": "false"}, Ordering: "assigned_to__last_name"})
	require.NoError(t, err)
	require.Equal(t, 8, open.TotalCount)
	require.NotEmpty(t, open.Rows[0].AssignedTo.LastName)
	require.Equal(t, "Console", open.Rows[0].AssignedBy.LastName)

	target := open.Rows[0]
	updated, _, err := repo.Update(ctx, target.ID, json.RawMessage(`{"done":true}`))
	require.NoError(t, err)
	require.True(t, updated.Done)
	require.Equal(t, target.Summary, updated.Summary)

	done, err = repo.Fetch(ctx, remotetable.Request{Limit: 50, Filters: map[string]string{"done": "true"}})
	require.NoError(t, err)
	require.Equal(t, 5, done.TotalCount)
}

func TestServer_CSRF(t *testing.T) {
	_, srv := startServer(t, Options{})
	token := loginAdmin(t, newClient(t, srv, 1<<20))

	// GET hands out the cookie.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/employees/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Token "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	var csrf *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "csrftoken" {
			csrf = ck
		}
	}
	require.NotNil(t, csrf)

	send := func(header string) int {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/employees/1/", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Token "+token)
		req.AddCookie(csrf)
		if header != "" {
			req.Header.Set("X-CSRFToken", header)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}
	require.Equal(t, http.StatusForbidden, send(""))
	require.Equal(t, http.StatusForbidden, send("wrong"))
	require.Equal(t, http.StatusNoContent, send(csrf.Value))
}

func TestServer_Attachments(t *testing.T) {
	_, srv := startServer(t, Options{MaxUploadSize: 1024})
	c := signedIn(t, srv)

	var att types.Attachment
	task := c.StartUpload(context.Background(), apiclient.UploadRequest{
		Path:     "attachments/",
		FileName: "notes.txt",
		Body:     strings.NewReader("hello attachments"),
		Size:     17,
	}, &att)
	status, err := task.Wait()
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "notes.txt", att.FileName)
	require.Equal(t, int64(17), att.FileSize)
	require.True(t, strings.HasPrefix(att.FileMime, "text/plain"))

	inline, err := apiclient.EncodeBase64File("a.txt", strings.NewReader("inline"), 1024)
	require.NoError(t, err)
	var second types.Attachment
	status, err = c.DoJSON(context.Background(), http.MethodPost, "attachments/", nil, inline, &second)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, int64(6), second.FileSize)
}

func TestServer_AttachmentTooLarge(t *testing.T) {
	_, srv := startServer(t, Options{MaxUploadSize: 16})
	big := bytes.Repeat([]byte("x"), 64)

	// A client allowing larger files still gets 413 from the server.
	c := signedIn(t, srv)

	task := c.StartUpload(context.Background(), apiclient.UploadRequest{
		Path:     "attachments/",
		FileName: "big.bin",
		Body:     bytes.NewReader(big),
		Size:     int64(len(big)),
	}, nil)
	status, err := task.Wait()
	require.Equal(t, http.StatusRequestEntityTooLarge, status)
	require.True(t, apiclient.IsStatus(err, http.StatusRequestEntityTooLarge))
}

func TestServer_MetricsAndRequestID(t *testing.T) {
	_, srv := startServer(t, Options{})
	c := signedIn(t, srv)
	_, err := hrmpersistence.NewEmployeeRepository(c).Fetch(context.Background(), remotetable.Request{Limit: 1})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/debug/prometheus")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `mockapi_requests_total{class="2xx",method="GET",route="/api/employees/"}`)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp2, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	_ = resp2.Body.Close()
	require.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
