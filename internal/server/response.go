package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nmelnikov/authcove/internal/auth"
	"github.com/nmelnikov/authcove/internal/token"
	"github.com/nmelnikov/authcove/internal/users"
)

// Response is the envelope returned by every API endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TokenPair is the data payload returned by login, register, and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: message})
}

// respondDomainError maps domain errors onto HTTP statuses. Token rejection
// reasons stay distinguishable in the body; credential failures stay
// deliberately vague.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrNoToken):
		respondError(c, http.StatusUnauthorized, "authorization token required")
	case errors.Is(err, token.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, "token has expired")
	case errors.Is(err, token.ErrTokenRevoked):
		respondError(c, http.StatusUnauthorized, "token has been revoked")
	case errors.Is(err, auth.ErrUnknownUser),
		errors.Is(err, token.ErrTokenMalformed),
		errors.Is(err, token.ErrTokenSignatureInvalid),
		errors.Is(err, token.ErrTokenKindMismatch),
		errors.Is(err, token.ErrRefreshNotCurrent):
		respondError(c, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, auth.ErrAccountInactive):
		respondError(c, http.StatusForbidden, "account is inactive")
	case errors.Is(err, users.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, users.ErrDuplicateEmail):
		respondError(c, http.StatusConflict, "user already exists with this email")
	case errors.Is(err, users.ErrNotFound):
		respondError(c, http.StatusNotFound, "user not found")
	case errors.Is(err, token.ErrVerificationUnavailable):
		respondError(c, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
