package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nmelnikov/authcove/internal/auth"
	"github.com/nmelnikov/authcove/internal/users"
)

type userHandlers struct {
	users *users.Service
}

type updateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// me returns the authenticated user's own record.
func (h *userHandlers) me(c *gin.Context) {
	user, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization token required")
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"user": user})
}

// getByID returns any user's record by ID.
func (h *userHandlers) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"user": user})
}

// updateMe applies profile changes to the authenticated user.
func (h *userHandlers) updateMe(c *gin.Context) {
	user, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization token required")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == nil && req.LastName == nil {
		respondError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	updated, err := h.users.Update(c.Request.Context(), user.ID, users.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "profile updated", gin.H{"user": updated})
}

// deleteMe removes the authenticated user's account and ends the session.
func (h *userHandlers) deleteMe(c *gin.Context) {
	user, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "authorization token required")
		return
	}

	if err := h.users.Delete(c.Request.Context(), user.ID); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "account deleted", nil)
}
