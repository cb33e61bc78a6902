package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-service/internal/config"
	"github.com/iyhunko/inventory-service/internal/model"
	"github.com/iyhunko/inventory-service/internal/repository"
)

const (
	// SubjectKey is the gin context key holding the identity of the authenticated caller.
	SubjectKey = "auth.subject"
	// TokenIDKey is the gin context key holding the ID of the stored token used for the request.
	// It is unset for tokens taken from the configuration.
	TokenIDKey = "auth.token_id"
)

type Middleware struct {
	config *config.Config
	tokens repository.TokenRepository
}

// New initializes the middleware with the given configuration and token store.
// tokens may be nil, in which case only configured tokens are accepted.
// We don't need ctx here because it always has Gin context.
func New(config *config.Config, tokens repository.TokenRepository) *Middleware {
	return &Middleware{
		config: config,
		tokens: tokens,
	}
}

// Auth rejects requests without a bearer token listed in the configuration or the token store.
// The caller identity is stored under SubjectKey.
func (m *Middleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			unauthenticated(c)
			return
		}

		if m.validToken(token) {
			c.Set(SubjectKey, subject(token))
			c.Next()
			return
		}
		if m.tokens == nil {
			unauthenticated(c)
			return
		}

		stored, err := m.tokens.FindByHash(c.Request.Context(), model.HashToken(token))
		if errors.Is(err, repository.ErrNotFound) {
			unauthenticated(c)
			return
		}
		if err != nil {
			slog.Error("Failed to look up api token", slog.Any("err", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
			})
			return
		}
		if err := m.tokens.MarkUsed(c.Request.Context(), stored.ID); err != nil {
			slog.Warn("Failed to record api token use", slog.String("token_id", stored.ID.String()), slog.Any("err", err))
		}

		c.Set(SubjectKey, "token:"+stored.Name)
		c.Set(TokenIDKey, stored.ID)
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Unauthenticated.",
	})
}

func (m *Middleware) validToken(token string) bool {
	valid := false
	for _, allowed := range m.config.Auth.Tokens {
		if subtle.ConstantTimeCompare([]byte(token), []byte(allowed)) == 1 {
			valid = true
		}
	}
	return valid
}

// subject keeps only a token prefix so logs never carry the full secret.
func subject(token string) string {
	if len(token) <= 4 {
		return "token:****"
	}
	return "token:" + token[:4] + "****"
}

// Recovery is a middleware that recovers from panics and returns a 500 Internal Server Error
// instead of crashing the server.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}

// CORS allows the product API to be called from browser frontends on other origins.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Logger writes one structured log record per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if sub, ok := c.Get(SubjectKey); ok {
			attrs = append(attrs, slog.Any("subject", sub))
		}

		switch {
		case status >= http.StatusInternalServerError:
			slog.Error("HTTP request", attrs...)
		case status >= http.StatusBadRequest:
			slog.Warn("HTTP request", attrs...)
		default:
			slog.Info("HTTP request", attrs...)
		}
	}
}
