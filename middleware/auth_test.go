package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRequireAuth(t *testing.T) {
	services.InitSessionService()
	token := services.GetSessionService().Issue(services.Actor{
		UserID: 5, FullName: "Sergey Master", Role: "Master",
	})

	router := setupAuthTestRouter()
	router.GET("/protected", RequireAuth(), func(c *gin.Context) {
		actor, err := GetActor(c)
		assert.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID})
	})

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "Valid token", token: token, expectedStatus: http.StatusOK},
		{name: "Missing token", token: "", expectedStatus: http.StatusUnauthorized},
		{name: "Unknown token", token: "not-a-session", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
			if tt.token != "" {
				req.Header.Set(SessionTokenHeader, tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireAuthAfterRevocation(t *testing.T) {
	services.InitSessionService()
	token := services.GetSessionService().Issue(services.Actor{UserID: 5, Role: "Master"})
	services.GetSessionService().Revoke(token)

	router := setupAuthTestRouter()
	router.GET("/protected", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(SessionTokenHeader, token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name           string
		actorRole      string
		allowedRoles   []string
		expectedStatus int
	}{
		{name: "Role allowed", actorRole: "Master", allowedRoles: []string{"Master", "Admin"}, expectedStatus: http.StatusOK},
		{name: "Second role allowed", actorRole: "Admin", allowedRoles: []string{"Master", "Admin"}, expectedStatus: http.StatusOK},
		{name: "Role forbidden", actorRole: "Worker", allowedRoles: []string{"Master", "Admin"}, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAuthTestRouter()
			router.GET("/gated", func(c *gin.Context) {
				c.Set("actor", services.Actor{UserID: 1, Role: tt.actorRole})
				c.Next()
			}, RequireRole(tt.allowedRoles...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireRoleWithoutActor(t *testing.T) {
	router := setupAuthTestRouter()
	router.GET("/gated", RequireRole("Admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/gated", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
