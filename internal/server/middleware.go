package server

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nmelnikov/authcove/internal/auth"
	"github.com/nmelnikov/authcove/internal/observability"
)

// RequestIDHeader is the header carrying the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware assigns each request a correlation ID, honoring one
// supplied by the client.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := observability.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// loggingMiddleware logs one line per request with method, path, status,
// and latency.
func loggingMiddleware(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithContext(c.Request.Context()).Info("request completed",
			observability.String("method", c.Request.Method),
			observability.String("path", path),
			observability.Int("status", c.Writer.Status()),
			observability.Duration("duration", time.Since(start)),
		)
	}
}

// recoveryMiddleware converts panics into 500 responses with a logged stack.
func recoveryMiddleware(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					observability.String("path", c.Request.URL.Path),
					observability.String("method", c.Request.Method),
					observability.Any("error", err),
					observability.String("stack", string(debug.Stack())),
				)
				respondError(c, http.StatusInternalServerError, "internal server error")
			}
		}()

		c.Next()
	}
}

// metricsMiddleware records request duration per method, route, and status.
func metricsMiddleware(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// authMiddleware requires a valid access token and puts the resolved user on
// the request context.
func authMiddleware(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			respondDomainError(c, err)
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), raw)
		if err != nil {
			respondDomainError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Next()
	}
}
