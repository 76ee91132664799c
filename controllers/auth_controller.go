package controllers

import (
	"fmt"
	"net/http"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest represents the request body for login/password authentication
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PinLoginRequest represents the request body for worker PIN authentication
type PinLoginRequest struct {
	Pin string `json:"pin" binding:"required,len=4,numeric"`
}

// Login handles POST /api/v1/auth/login - authenticates a non-worker user
// with login and password and issues a session token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Login and password are required",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("login = ? AND status = ?", req.Login, models.UserStatusActive).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Invalid login or password",
			},
		})
		return
	}

	// Workers log in with a PIN, not with credentials
	if user.Role == models.RoleWorker || user.PasswordHash == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Invalid login or password",
			},
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Invalid login or password",
			},
		})
		return
	}

	token := services.GetSessionService().Issue(services.Actor{
		UserID:   user.ID,
		FullName: user.FullName,
		Role:     user.Role,
	})

	services.GetAuditService().Record(&user.ID, "user_login",
		fmt.Sprintf("%s (%s) logged in", user.FullName, user.Role))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"session_token": token,
			"user":          user,
		},
	})
}

// LoginWorker handles POST /api/v1/auth/login/pin - authenticates a worker
// with a 4-digit PIN and issues a session token
func LoginWorker(c *gin.Context) {
	var req PinLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "PIN must be exactly 4 digits",
			},
		})
		return
	}

	// PINs are not unique keys, so compare against every active worker
	db := config.GetDB()
	var workers []models.User
	if err := db.Where("role = ? AND status = ? AND pin_hash IS NOT NULL",
		models.RoleWorker, models.UserStatusActive).Find(&workers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query workers",
			},
		})
		return
	}

	for _, worker := range workers {
		if bcrypt.CompareHashAndPassword([]byte(*worker.PinHash), []byte(req.Pin)) == nil {
			token := services.GetSessionService().Issue(services.Actor{
				UserID:   worker.ID,
				FullName: worker.FullName,
				Role:     worker.Role,
			})

			services.GetAuditService().Record(&worker.ID, "worker_login",
				fmt.Sprintf("%s logged in via PIN", worker.FullName))

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data": gin.H{
					"session_token": token,
					"user":          worker,
				},
			})
			return
		}
	}

	services.GetAuditService().Record(nil, "worker_login_failed", "PIN login attempt failed")

	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": "Invalid PIN",
		},
	})
}

// Logout handles POST /api/v1/auth/logout - revokes the current session
func Logout(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not retrieve session actor",
			},
		})
		return
	}

	token, err := middleware.GetSessionToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not retrieve session token",
			},
		})
		return
	}

	services.GetSessionService().Revoke(token)

	services.GetAuditService().Record(&actor.UserID, "user_logout",
		fmt.Sprintf("%s logged out", actor.FullName))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

// GetSession handles GET /api/v1/auth/session - resolves the current session
// token to its user record
func GetSession(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not retrieve session actor",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, actor.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Session user no longer exists",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
