package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nmelnikov/authcove/internal/auth"
	"github.com/nmelnikov/authcove/internal/events"
	"github.com/nmelnikov/authcove/internal/token"
	"github.com/nmelnikov/authcove/internal/users"
)

const minPasswordLength = 8

type authHandlers struct {
	users     *users.Service
	tokens    *token.Service
	publisher events.Publisher
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

// issueTokenPair mints both tokens for a freshly authenticated user.
func (h *authHandlers) issueTokenPair(c *gin.Context, user *users.User) (*TokenPair, bool) {
	access, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		respondDomainError(c, err)
		return nil, false
	}
	refresh, err := h.tokens.IssueRefreshToken(c.Request.Context(), user)
	if err != nil {
		respondDomainError(c, err)
		return nil, false
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, true
}

// register creates an account and returns the user with an initial token pair.
func (h *authHandlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validEmail(req.Email) {
		respondError(c, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(c, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.users.Register(c.Request.Context(), users.RegisterInput{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	pair, ok := h.issueTokenPair(c, user)
	if !ok {
		return
	}

	respondOK(c, http.StatusCreated, "user registered", gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// login verifies credentials and returns a fresh token pair.
func (h *authHandlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(),
		strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	pair, ok := h.issueTokenPair(c, user)
	if !ok {
		return
	}

	h.publisher.Publish(c.Request.Context(), events.QueueUserEvents,
		events.NewMessage(events.EventUserLogin, user.ID, map[string]any{
			"email": user.Email,
		}))

	respondOK(c, http.StatusOK, "login successful", gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// logout revokes the presented access token and the user's refresh record.
// Both ends of the session are cut: the access token is blacklisted for its
// remaining lifetime and the refresh token can no longer be redeemed.
func (h *authHandlers) logout(c *gin.Context) {
	user, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization token required")
		return
	}

	raw, err := auth.ExtractBearer(c.GetHeader("Authorization"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := h.tokens.RevokeAccessToken(c.Request.Context(), raw); err != nil {
		respondDomainError(c, err)
		return
	}
	if err := h.tokens.RevokeRefreshToken(c.Request.Context(), user.ID); err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "logged out", nil)
}

// refresh redeems a refresh token for a new token pair. The old refresh
// token is superseded by the new one in the same step, so each refresh token
// is redeemable at most once.
func (h *authHandlers) refresh(c *gin.Context) {
	raw, err := auth.ExtractBearer(c.GetHeader("Authorization"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	claims, err := h.tokens.VerifyRefreshToken(c.Request.Context(), raw)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if !user.Active {
		respondDomainError(c, auth.ErrAccountInactive)
		return
	}

	pair, ok := h.issueTokenPair(c, user)
	if !ok {
		return
	}

	respondOK(c, http.StatusOK, "token refreshed", gin.H{
		"tokens": pair,
	})
}
