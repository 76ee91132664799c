package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// UpdateSettingsRequest represents the request body for writing settings.
// Keys absent from the map are left untouched.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1"`
}

// GetSettings handles GET /api/v1/settings (admin only)
func GetSettings(c *gin.Context) {
	db := config.GetDB()

	var settings []models.SystemSetting
	if err := db.Order("key ASC").Find(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query settings",
			},
		})
		return
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    values,
	})
}

// UpdateSettings handles PUT /api/v1/settings (admin only) - upserts the
// provided key/value pairs
func UpdateSettings(c *gin.Context) {
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

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "At least one setting is required",
			},
		})
		return
	}

	db := config.GetDB()
	for key, value := range req.Settings {
		setting := models.SystemSetting{Key: key, Value: value}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&setting).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update settings",
				},
			})
			return
		}
	}

	services.GetAuditService().Record(&actor.UserID, "settings_updated",
		fmt.Sprintf("%d setting(s) updated", len(req.Settings)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Settings updated",
	})
}

// ListAuditLogs handles GET /api/v1/audit-logs (admin only) - newest first,
// optional ?limit= capped at 500
func ListAuditLogs(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Limit must be a positive integer",
				},
			})
			return
		}
		limit = parsed
	}
	if limit > 500 {
		limit = 500
	}

	db := config.GetDB()

	var logs []models.AuditLog
	if err := db.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query audit logs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}
