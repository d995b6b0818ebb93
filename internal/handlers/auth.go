package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/quiz-import-service/internal/config"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

const (
	contextUserID  = "user_id"
	contextIsAdmin = "is_admin"

	// DevUserHeader names the caller when token checks are disabled
	DevUserHeader = "X-User-ID"
)

// TokenParser verifies a bearer token. *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// NewTokenParser builds the casdoor client from configuration
func NewTokenParser(cfg config.AuthConfig) TokenParser {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// AuthMiddleware resolves the caller. With a nil parser every request is
// trusted, the user comes from X-User-ID and is treated as an admin.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if parser == nil {
			userID := strings.TrimSpace(c.GetHeader(DevUserHeader))
			if userID == "" {
				userID = "dev"
			}
			c.Set(contextUserID, userID)
			c.Set(contextIsAdmin, true)
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		claims, err := parser.ParseJwtToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Details: err.Error(),
			})
			return
		}

		userID := claims.User.Id
		if userID == "" {
			userID = claims.Subject
		}
		c.Set(contextUserID, userID)
		c.Set(contextIsAdmin, claims.User.IsAdmin)
		c.Next()
	}
}

// AdminMiddleware rejects callers without the admin flag
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(contextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Forbidden - insufficient permissions",
			})
			return
		}
		c.Next()
	}
}
