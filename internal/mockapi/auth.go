package mockapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/pkg/httpapi"
	"github.com/iota-uz/staff-console/pkg/middleware"
)

type accountKey struct{}

func currentAccount(ctx context.Context) (user.Account, bool) {
	acc, ok := ctx.Value(accountKey{}).(user.Account)
	return acc, ok
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if v, ok := strings.CutPrefix(h, "Token "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	_ = httpapi.WriteJSON(w, status, map[string]string{"detail": detail})
}

// tokenAuth rejects requests without a known token, except for paths in
// public.
func (s *Server) tokenAuth(public map[string]bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			token := bearerToken(r)
			if token == "" {
				writeDetail(w, http.StatusUnauthorized, "authentication credentials were not provided")
				return
			}
			acc, ok := s.store.AccountByToken(token)
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), accountKey{}, acc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// csrf hands out the cookie on safe requests. A mutating request that
// carries the cookie must echo it in the header.
func (s *Server) csrf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.opts.CSRFCookieName)
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if err != nil || cookie.Value == "" {
				http.SetCookie(w, &http.Cookie{
					Name:     s.opts.CSRFCookieName,
					Value:    strings.ReplaceAll(uuid.NewString(), "-", ""),
					Path:     "/",
					SameSite: http.SameSiteLaxMode,
				})
			}
		default:
			if err == nil && cookie.Value != "" {
				header := r.Header.Get(s.opts.CSRFHeaderName)
				if subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
					middleware.Logger(r.Context()).Warn("csrf token mismatch")
					writeDetail(w, http.StatusForbidden, "CSRF failed: token missing or incorrect")
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMalformed(w)
		return
	}
	token, err := s.store.Login(req.Email, req.Password)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", err.Error(), nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.store.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var dto user.SignUpDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeMalformed(w)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteValidationError(w, errs)
		return
	}
	acc, err := s.store.Register(dto, s.opts.BcryptCost)
	if errors.Is(err, ErrEmailTaken) {
		_ = httpapi.WriteValidationError(w, map[string]string{"email": err.Error()})
		return
	}
	if err != nil {
		middleware.Logger(r.Context()).WithError(err).Error("register failed")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, acc)
}

func writeMalformed(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
}
