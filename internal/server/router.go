// Package server exposes the HTTP API: registration, login, token refresh,
// logout, and profile management, plus health and metrics endpoints.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmelnikov/authcove/internal/auth"
	"github.com/nmelnikov/authcove/internal/events"
	"github.com/nmelnikov/authcove/internal/observability"
	"github.com/nmelnikov/authcove/internal/token"
	"github.com/nmelnikov/authcove/internal/users"
)

// Deps carries everything the router needs.
type Deps struct {
	Users         *users.Service
	Tokens        *token.Service
	Authenticator *auth.Authenticator
	Publisher     events.Publisher
	Logger        observability.Logger
	Metrics       *observability.Metrics
	Registry      *prometheus.Registry
}

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = observability.NopLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NopMetrics()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		recoveryMiddleware(deps.Logger),
		loggingMiddleware(deps.Logger),
		metricsMiddleware(deps.Metrics),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	authH := &authHandlers{
		users:     deps.Users,
		tokens:    deps.Tokens,
		publisher: deps.Publisher,
	}
	userH := &userHandlers{users: deps.Users}

	requireAuth := authMiddleware(deps.Authenticator)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/register", authH.register)
		authGroup.POST("/login", authH.login)
		authGroup.POST("/refresh", authH.refresh)
		authGroup.POST("/logout", requireAuth, authH.logout)

		usersGroup := api.Group("/users", requireAuth)
		usersGroup.GET("/me", userH.me)
		usersGroup.PUT("/me", userH.updateMe)
		usersGroup.DELETE("/me", userH.deleteMe)
		usersGroup.GET("/:id", userH.getByID)
	}

	return router
}
