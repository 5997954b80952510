package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/auth"
	"github.com/medikart/medikart-backend/internal/models"
	"github.com/medikart/medikart-backend/internal/repository"
)

const (
	// ContextUserKey holds the authenticated *models.User on the gin
	// context.
	ContextUserKey = "currentUser"
)

// CurrentUser returns the authenticated user set by Authenticate.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// Authenticate validates the Bearer token and loads the account onto
// the request context.
func Authenticate(tokens *auth.TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Authorization token required")
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				abortUnauthorized(c, "Account no longer exists")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"message":   "Something went wrong",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireRoles rejects requests whose authenticated user does not hold
// one of the allowed roles. It must run after Authenticate.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "Authorization token required")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success":   false,
			"message":   "Access denied",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":   false,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
