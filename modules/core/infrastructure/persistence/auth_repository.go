package persistence

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/pkg/apiclient"
)

const (
	LoginPath    = "auth/login/"
	LogoutPath   = "auth/logout/"
	RegisterPath = "users/registrate/"
)

var ErrNoToken = errors.New("login response carried no token")

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// AuthRepository talks to the authentication endpoints.
type AuthRepository struct {
	client *apiclient.Client
}

func NewAuthRepository(client *apiclient.Client) *AuthRepository {
	return &AuthRepository{client: client}
}

func (r *AuthRepository) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	if _, err := r.client.DoJSON(ctx, http.MethodPost, LoginPath, nil, credentials{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

func (r *AuthRepository) Logout(ctx context.Context) error {
	_, err := r.client.DoJSON(ctx, http.MethodPost, LogoutPath, nil, nil, nil)
	return err
}

func (r *AuthRepository) Register(ctx context.Context, data user.SignUpDTO) (user.Account, int, error) {
	var out user.Account
	status, err := r.client.DoJSON(ctx, http.MethodPost, RegisterPath, nil, data, &out)
	return out, status, err
}
