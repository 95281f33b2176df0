// Package auth resolves a bearer token into an authenticated user.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/nmelnikov/authcove/internal/observability"
	"github.com/nmelnikov/authcove/internal/token"
	"github.com/nmelnikov/authcove/internal/users"
)

var (
	// ErrNoToken is returned when the Authorization header is missing or is
	// not a bearer scheme.
	ErrNoToken = errors.New("no bearer token provided")

	// ErrAccountInactive is returned when the token is valid but the account
	// behind it has been deactivated.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrUnknownUser is returned when the token is valid but no account
	// exists behind it, typically after the account was deleted.
	ErrUnknownUser = errors.New("user behind token no longer exists")
)

// ExtractBearer pulls the raw token out of an Authorization header value.
func ExtractBearer(header string) (string, error) {
	const prefix = "Bearer "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return "", ErrNoToken
	}
	raw := strings.TrimSpace(header[len(prefix):])
	if raw == "" {
		return "", ErrNoToken
	}
	return raw, nil
}

// Authenticator turns raw access tokens into user records.
type Authenticator struct {
	tokens *token.Service
	users  *users.Service
	logger observability.Logger
}

// NewAuthenticator wires an Authenticator.
func NewAuthenticator(tokens *token.Service, userSvc *users.Service, logger observability.Logger) *Authenticator {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Authenticator{tokens: tokens, users: userSvc, logger: logger}
}

// Authenticate verifies the access token, resolves its user through the
// cache-aside read path, and confirms the account is still active.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*users.User, error) {
	claims, err := a.tokens.VerifyAccessToken(ctx, raw)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrAccountInactive
	}
	return user, nil
}

type contextKey struct{}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext retrieves the authenticated user, if any.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*users.User)
	return user, ok
}
