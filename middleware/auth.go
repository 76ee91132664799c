package middleware

import (
	"net/http"

	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
)

// SessionTokenHeader carries the opaque session token issued at login
const SessionTokenHeader = "X-Session-Token"

// RequireAuth resolves the session token to an actor and stores it in the
// gin context. Requests without a resolvable token are rejected.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionTokenHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Session token is required",
				},
			})
			c.Abort()
			return
		}

		actor, ok := services.GetSessionService().Resolve(token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Session token is invalid or expired",
				},
			})
			c.Abort()
			return
		}

		c.Set("actor", actor)
		c.Set("session_token", token)

		c.Next()
	}
}

// RequireRole checks that the authenticated actor holds one of the roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActor(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not retrieve session actor",
				},
			})
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Insufficient permissions to access this resource",
			},
		})
		c.Abort()
	}
}

// GetActor extracts the authenticated actor from the Gin context
func GetActor(c *gin.Context) (services.Actor, error) {
	value, exists := c.Get("actor")
	if !exists {
		return services.Actor{}, &AuthError{Code: "MISSING_ACTOR", Message: "Actor not found in context"}
	}

	actor, ok := value.(services.Actor)
	if !ok {
		return services.Actor{}, &AuthError{Code: "INVALID_ACTOR", Message: "Actor is not in the expected format"}
	}

	return actor, nil
}

// GetSessionToken extracts the session token from the Gin context
func GetSessionToken(c *gin.Context) (string, error) {
	value, exists := c.Get("session_token")
	if !exists {
		return "", &AuthError{Code: "MISSING_TOKEN", Message: "Session token not found in context"}
	}

	token, ok := value.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_TOKEN", Message: "Session token is not a string"}
	}

	return token, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
