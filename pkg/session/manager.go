package session

import (
	"context"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/staff-console/pkg/apiclient"
)

// Authenticator exchanges credentials for an API token.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
}

type AuthenticatorFunc func(ctx context.Context, email, password string) (string, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, email, password string) (string, error) {
	return f(ctx, email, password)
}

type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxBackoff  time.Duration
	JitterMax   time.Duration
	Rand        *rand.Rand
	Logger      *logrus.Logger
	Now         func() time.Time
}

func (o *Options) setDefaults() {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
	if o.BaseDelay == 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxBackoff == 0 {
		o.MaxBackoff = 10 * time.Second
	}
	if o.JitterMax == 0 {
		o.JitterMax = 200 * time.Millisecond
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Manager holds the current token. Remembered sign-ins are written to the
// persistent store; others live only in memory.
type Manager struct {
	persistent Store
	memory     *MemoryStore
	opts       Options
	log        *logrus.Entry

	mu    sync.Mutex
	token Token
}

func NewManager(persistent Store, opts Options) *Manager {
	opts.setDefaults()
	return &Manager{
		persistent: persistent,
		memory:     &MemoryStore{},
		opts:       opts,
		log:        opts.Logger.WithField("component", "session"),
	}
}

// Restore loads a remembered token. ErrNoSession means nobody is signed in.
func (m *Manager) Restore() error {
	if m.persistent == nil {
		return ErrNoSession
	}
	t, err := m.persistent.Load()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.token = t
	m.mu.Unlock()
	return m.memory.Save(t)
}

// Token implements apiclient.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token.Value
}

func (m *Manager) Current() (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.token.Valid() {
		return Token{}, ErrNoSession
	}
	return m.token, nil
}

func retryable(err error) bool {
	if apiclient.IsKind(err, apiclient.KindTransport) {
		return true
	}
	return apiclient.IsStatus(err, http.StatusBadGateway) ||
		apiclient.IsStatus(err, http.StatusServiceUnavailable) ||
		apiclient.IsStatus(err, http.StatusGatewayTimeout)
}

// Login authenticates and stores the token. Transport failures are retried
// with exponential backoff; rejected credentials are returned at once.
func (m *Manager) Login(ctx context.Context, auth Authenticator, email, password string, remember bool) error {
	email = strings.TrimSpace(email)
	var lastErr error
	for attempt := 0; attempt < m.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt, m.opts.BaseDelay, m.opts.MaxBackoff) + jitter(m.opts.Rand, m.opts.JitterMax)
			m.log.WithError(lastErr).WithFields(logrus.Fields{"attempt": attempt + 1, "delay": delay}).Warn("retrying sign-in")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		value, err := auth.Authenticate(ctx, email, password)
		if err != nil {
			lastErr = err
			if !retryable(err) {
				return err
			}
			continue
		}
		if value == "" {
			return errors.New("empty token in sign-in response")
		}
		return m.set(Token{Value: value, Email: email, IssuedAt: m.opts.Now()}, remember)
	}
	return lastErr
}

func (m *Manager) set(t Token, remember bool) error {
	m.mu.Lock()
	m.token = t
	m.mu.Unlock()

	if err := m.memory.Save(t); err != nil {
		return err
	}
	if m.persistent == nil {
		return nil
	}
	if remember {
		return m.persistent.Save(t)
	}
	return m.persistent.Clear()
}

// Logout forgets the token everywhere.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = Token{}
	m.mu.Unlock()

	_ = m.memory.Clear()
	if m.persistent != nil {
		return m.persistent.Clear()
	}
	return nil
}
