package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/pkg/apiclient"
)

func testOptions() Options {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return Options{
		BaseDelay:  time.Millisecond,
		MaxBackoff: 5 * time.Millisecond,
		JitterMax:  time.Millisecond,
		Logger:     log,
		Now:        func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path)

	_, err := s.Load()
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.Save(Token{Value: "abc", Email: "a@b.c"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "abc", got.Value)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	_, err = s.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestManager_LoginRemember(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	m := NewManager(store, testOptions())
	auth := AuthenticatorFunc(func(ctx context.Context, email, password string) (string, error) {
		require.Equal(t, "admin@example.com", email)
		return "tok-1", nil
	})

	require.NoError(t, m.Login(context.Background(), auth, " admin@example.com ", "secret", true))
	require.Equal(t, "tok-1", m.Token())

	restored := NewManager(store, testOptions())
	require.NoError(t, restored.Restore())
	cur, err := restored.Current()
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", cur.Email)

	require.NoError(t, restored.Logout())
	require.Empty(t, restored.Token())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestManager_LoginWithoutRememberStaysInMemory(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(Token{Value: "old"}))

	m := NewManager(store, testOptions())
	auth := AuthenticatorFunc(func(context.Context, string, string) (string, error) { return "tok-2", nil })
	require.NoError(t, m.Login(context.Background(), auth, "a@b.c", "pw", false))

	require.Equal(t, "tok-2", m.Token())
	_, err := store.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestManager_RetriesTransportFailures(t *testing.T) {
	m := NewManager(&MemoryStore{}, testOptions())
	calls := 0
	auth := AuthenticatorFunc(func(context.Context, string, string) (string, error) {
		calls++
		if calls < 3 {
			return "", &apiclient.Error{Kind: apiclient.KindTransport, Err: errors.New("connection refused")}
		}
		return "tok", nil
	})
	require.NoError(t, m.Login(context.Background(), auth, "a@b.c", "pw", false))
	require.Equal(t, 3, calls)
}

func TestManager_DoesNotRetryRejectedCredentials(t *testing.T) {
	m := NewManager(nil, testOptions())
	calls := 0
	rejected := &apiclient.Error{Kind: apiclient.KindClient, Status: http.StatusUnauthorized}
	auth := AuthenticatorFunc(func(context.Context, string, string) (string, error) {
		calls++
		return "", rejected
	})
	err := m.Login(context.Background(), auth, "a@b.c", "bad", true)
	require.ErrorIs(t, err, rejected)
	require.Equal(t, 1, calls)
	_, err = m.Current()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestManager_LoginHonorsContext(t *testing.T) {
	opts := testOptions()
	opts.BaseDelay = time.Hour
	opts.MaxBackoff = time.Hour
	m := NewManager(nil, opts)

	ctx, cancel := context.WithCancel(context.Background())
	auth := AuthenticatorFunc(func(context.Context, string, string) (string, error) {
		cancel()
		return "", &apiclient.Error{Kind: apiclient.KindTransport}
	})
	require.ErrorIs(t, m.Login(ctx, auth, "a@b.c", "pw", false), context.Canceled)
}

func TestBackoff(t *testing.T) {
	require.Zero(t, backoff(0, time.Second, time.Minute))
	require.Equal(t, time.Second, backoff(1, time.Second, time.Minute))
	require.Equal(t, 4*time.Second, backoff(3, time.Second, time.Minute))
	require.Equal(t, 5*time.Second, backoff(10, time.Second, 5*time.Second))
	require.Zero(t, jitter(nil, time.Second))
}
