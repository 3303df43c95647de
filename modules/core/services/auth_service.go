package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/modules/core/infrastructure/persistence"
	"github.com/iota-uz/staff-console/pkg/eventbus"
	"github.com/iota-uz/staff-console/pkg/session"
)

type AuthService struct {
	repo      *persistence.AuthRepository
	sessions  *session.Manager
	publisher eventbus.EventBus
	log       *logrus.Entry
	now       func() time.Time
}

func NewAuthService(repo *persistence.AuthRepository, sessions *session.Manager, publisher eventbus.EventBus, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		log:       logger.WithField("component", "core.auth"),
		now:       time.Now,
	}
}

// Authenticate implements session.Authenticator.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	return s.repo.Login(ctx, email, password)
}

func (s *AuthService) SignIn(ctx context.Context, data *user.SignInDTO) error {
	if errs, ok := data.Ok(); !ok {
		return errs
	}
	if err := s.sessions.Login(ctx, s, data.Email, data.Password, data.Remember); err != nil {
		return err
	}
	s.publisher.Publish(&user.SignedInEvent{Email: data.Email, Remember: data.Remember, At: s.now()})
	return nil
}

// SignOut forgets the local token even when the server cannot be reached.
func (s *AuthService) SignOut(ctx context.Context) error {
	current, err := s.sessions.Current()
	if err != nil {
		return err
	}
	if err := s.repo.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("server-side logout failed")
	}
	if err := s.sessions.Logout(); err != nil {
		return err
	}
	s.publisher.Publish(&user.SignedOutEvent{Email: current.Email, At: s.now()})
	return nil
}

func (s *AuthService) SignUp(ctx context.Context, data *user.SignUpDTO) (user.Account, int, error) {
	if errs, ok := data.Ok(); !ok {
		return user.Account{}, 0, errs
	}
	account, status, err := s.repo.Register(ctx, *data)
	if err != nil {
		return user.Account{}, status, err
	}
	s.publisher.Publish(&user.RegisteredEvent{Result: account})
	return account, status, nil
}

// Current reports who is signed in.
func (s *AuthService) Current() (session.Token, error) {
	return s.sessions.Current()
}
