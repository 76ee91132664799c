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

// CreateUserRequest represents the request body for creating a user.
// Non-worker roles need login+password, workers need a 4-digit PIN.
type CreateUserRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Role     string  `json:"role" binding:"required"`
	Login    *string `json:"login"`
	Password *string `json:"password"`
	Pin      *string `json:"pin" binding:"omitempty,len=4,numeric"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
	Pin      *string `json:"pin" binding:"omitempty,len=4,numeric"`
}

// ListUsers handles GET /api/v1/users (admin only)
func ListUsers(c *gin.Context) {
	db := config.GetDB()

	var users []models.User
	if err := db.Order("full_name ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// CreateUser handles POST /api/v1/users (admin only)
func CreateUser(c *gin.Context) {
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

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if !models.IsValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": fmt.Sprintf("Unknown role %q", req.Role),
			},
		})
		return
	}

	user := models.User{
		FullName: req.FullName,
		Role:     req.Role,
		Status:   models.UserStatusActive,
	}

	if req.Role == models.RoleWorker {
		if req.Pin == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Workers require a 4-digit PIN",
				},
			})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Pin), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to hash PIN",
				},
			})
			return
		}
		hashStr := string(hash)
		user.PinHash = &hashStr
	} else {
		if req.Login == nil || req.Password == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Login and password are required for this role",
				},
			})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to hash password",
				},
			})
			return
		}
		hashStr := string(hash)
		user.Login = req.Login
		user.PasswordHash = &hashStr
	}

	if err := config.GetDB().Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create user",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "user_created",
		fmt.Sprintf("User %q (%s) created", user.FullName, user.Role))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateUser handles PUT /api/v1/users/:id (admin only)
func UpdateUser(c *gin.Context) {
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

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Status != nil {
		if *req.Status != models.UserStatusActive && *req.Status != models.UserStatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": fmt.Sprintf("Unknown user status %q", *req.Status),
				},
			})
			return
		}
		updates["status"] = *req.Status
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to hash password",
				},
			})
			return
		}
		updates["password_hash"] = string(hash)
	}
	if req.Pin != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Pin), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to hash PIN",
				},
			})
			return
		}
		updates["pin_hash"] = string(hash)
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update user",
				},
			})
			return
		}
	}

	services.GetAuditService().Record(&actor.UserID, "user_updated",
		fmt.Sprintf("User #%d updated", user.ID))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// DeleteUser handles DELETE /api/v1/users/:id (admin only, soft delete)
func DeleteUser(c *gin.Context) {
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
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	if user.ID == actor.UserID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Cannot delete your own account",
			},
		})
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete user",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "user_deleted",
		fmt.Sprintf("User #%d (%s) deleted", user.ID, user.FullName))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted",
	})
}
