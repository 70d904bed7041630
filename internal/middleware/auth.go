package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/rentbook/api/internal/models"
)

const (
	// UserIDKey is the context key for the authenticated user's id.
	UserIDKey = "user_id"
	// UserRoleKey is the context key for the authenticated user's role.
	UserRoleKey = "user_role"
)

// RequireAuth verifies the Bearer JWT on the request and stores the user id
// and role in the Gin context. Tokens are HS256-signed with the shared
// secret; claims must carry "sub" (user id) and "role" (owner|staff).
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		claims := jwt.MapClaims{}
		_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			unauthorized(c, "token is missing a user id")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || (role != string(models.RoleOwner) && role != string(models.RoleStaff)) {
			unauthorized(c, "token is missing a valid role")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UserRoleKey, models.AppRole(role))

		c.Next()
	}
}

// RequireOwner rejects requests whose authenticated role is not owner.
// Must run after RequireAuth.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != models.RoleOwner {
			requestID := GetRequestID(c)

			if log := GetLogger(c); log != nil {
				log.Warn("Owner-only route denied", map[string]interface{}{
					"request_id": requestID,
					"path":       c.Request.URL.Path,
					"role":       string(GetUserRole(c)),
				})
			}

			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":       "FORBIDDEN",
					"message":    "This action requires the owner role",
					"request_id": requestID,
				},
			})
			return
		}

		c.Next()
	}
}

// GetUserID retrieves the authenticated user id from the Gin context.
// Returns an empty string if not authenticated.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetUserRole retrieves the authenticated role from the Gin context.
// Returns an empty role if not authenticated.
func GetUserRole(c *gin.Context) models.AppRole {
	if v, exists := c.Get(UserRoleKey); exists {
		if role, ok := v.(models.AppRole); ok {
			return role
		}
	}
	return ""
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("Authorization header must be of the form: Bearer <token>")
	}

	return parts[1], nil
}

func unauthorized(c *gin.Context, message string) {
	requestID := GetRequestID(c)

	if log := GetLogger(c); log != nil {
		log.Warn("Unauthorized request", map[string]interface{}{
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"reason":     message,
		})
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":       "UNAUTHORIZED",
			"message":    message,
			"request_id": requestID,
		},
	})
}
