package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/modules/core/infrastructure/persistence"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/eventbus"
	"github.com/iota-uz/staff-console/pkg/session"
)

type authServer struct {
	logouts     int
	lastAuth    string
	lastPayload map[string]any
}

func (s *authServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/auth/login/":
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-1"}`))
	case "/api/auth/logout/":
		s.logouts++
		s.lastAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	case "/api/users/registrate/":
		_ = json.NewDecoder(r.Body).Decode(&s.lastPayload)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":3,"email":"ann@example.com","first_name":"Ann","last_name":"Lee"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newAuthService(t *testing.T) (*AuthService, *authServer, *session.Manager, *[]any) {
	t.Helper()
	backend := &authServer{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	sessions := session.NewManager(session.NewFileStore(filepath.Join(t.TempDir(), "session.json")), session.Options{
		BaseDelay: time.Millisecond,
		Logger:    log,
	})
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api", Tokens: sessions, Logger: log})
	require.NoError(t, err)

	bus := eventbus.NewEventPublisher(log)
	events := &[]any{}
	bus.Subscribe(func(ev *user.SignedInEvent) { *events = append(*events, ev) })
	bus.Subscribe(func(ev *user.SignedOutEvent) { *events = append(*events, ev) })
	bus.Subscribe(func(ev *user.RegisteredEvent) { *events = append(*events, ev) })

	return NewAuthService(persistence.NewAuthRepository(client), sessions, bus, log), backend, sessions, events
}

func TestAuthService_SignInAndOut(t *testing.T) {
	svc, backend, sessions, events := newAuthService(t)
	ctx := context.Background()

	err := svc.SignIn(ctx, &user.SignInDTO{Email: " ann@example.com ", Password: "secret", Remember: true})
	require.NoError(t, err)
	require.Equal(t, "tok-1", sessions.Token())

	current, err := svc.Current()
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", current.Email)

	require.NoError(t, svc.SignOut(ctx))
	require.Equal(t, 1, backend.logouts)
	require.Equal(t, "Token tok-1", backend.lastAuth)
	require.Empty(t, sessions.Token())

	require.Len(t, *events, 2)
	require.IsType(t, &user.SignedInEvent{}, (*events)[0])
	require.IsType(t, &user.SignedOutEvent{}, (*events)[1])

	require.ErrorIs(t, svc.SignOut(ctx), session.ErrNoSession)
}

func TestAuthService_SignInRejected(t *testing.T) {
	svc, _, sessions, events := newAuthService(t)

	err := svc.SignIn(context.Background(), &user.SignInDTO{Email: "ann@example.com", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, "invalid credentials", apiclient.UserMessage(err))
	require.Empty(t, sessions.Token())
	require.Empty(t, *events)
}

func TestAuthService_SignInValidatesLocally(t *testing.T) {
	svc, _, _, _ := newAuthService(t)

	err := svc.SignIn(context.Background(), &user.SignInDTO{Email: "not-an-email"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "password")
}

func TestAuthService_SignUp(t *testing.T) {
	svc, backend, _, events := newAuthService(t)

	account, status, err := svc.SignUp(context.Background(), &user.SignUpDTO{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@example.com",
		Password:  "long-enough",
		Mailing:   true,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, 3, account.ID)
	require.Equal(t, true, backend.lastPayload["mailing"])
	require.Len(t, *events, 1)

	_, _, err = svc.SignUp(context.Background(), &user.SignUpDTO{Email: "ann@example.com", Password: "short"})
	require.Error(t, err)
}
