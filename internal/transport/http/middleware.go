package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ubet123/OrgFlow-sub000/internal/auth"
)

const (
	// ContextKeyUserID is the context key for the authenticated user id.
	ContextKeyUserID = "user_id"
	// ContextKeyName is the context key for the user's display name.
	ContextKeyName = "name"
	// ContextKeyRole is the context key for the user's role.
	ContextKeyRole = "role"
)

// AuthMiddleware validates the externally issued bearer token and puts
// the identity into the request context. Credentials themselves are
// never checked here; that happened at issuance.
func AuthMiddleware(jwtConfig *auth.JWTConfig, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug().Msg("missing authorization header")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug().Msg("invalid authorization header format")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(jwtConfig, parts[1])
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyName, claims.Name)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// LoggerMiddleware logs HTTP requests after completion.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
