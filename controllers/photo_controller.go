package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/logging"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/d-muravev/service-station-api/utils"
	"github.com/gin-gonic/gin"
)

// UploadOrderPhoto handles POST /api/v1/orders/:id/photos - multipart upload
// of an intake photo taken during order creation or diagnostics
func UploadOrderPhoto(c *gin.Context) {
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
	var order models.Order
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Photo file is required in the 'photo' form field",
			},
		})
		return
	}

	s3Key, err := services.GetPhotoService().UploadPhoto(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to upload photo",
			},
		})
		return
	}

	photo := models.OrderPhoto{
		OrderID:      order.ID,
		S3Key:        s3Key,
		UploadedByID: actor.UserID,
	}

	if err := db.Create(&photo).Error; err != nil {
		// best effort cleanup of the orphaned object
		if delErr := services.GetPhotoService().DeletePhoto(s3Key); delErr != nil {
			logging.GetSugaredLogger().Warnw("Failed to delete orphaned photo", "s3_key", s3Key, "error", delErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record photo",
			},
		})
		return
	}

	if url, err := services.GetPhotoService().GetPhotoURL(photo.S3Key); err == nil {
		photo.PhotoURL = url
	}

	services.GetAuditService().Record(&actor.UserID, "photo_uploaded",
		fmt.Sprintf("Order #%d: photo uploaded", order.ID))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    photo,
	})
}

// ListOrderPhotos handles GET /api/v1/orders/:id/photos - returns the order's
// photos with presigned access URLs
func ListOrderPhotos(c *gin.Context) {
	db := config.GetDB()

	var order models.Order
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	var photos []models.OrderPhoto
	if err := db.Where("order_id = ?", order.ID).Order("id ASC").Find(&photos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query photos",
			},
		})
		return
	}

	photoService := services.GetPhotoService()
	for i := range photos {
		url, err := photoService.GetPhotoURL(photos[i].S3Key)
		if err != nil {
			logging.GetSugaredLogger().Warnw("Failed to presign photo URL", "s3_key", photos[i].S3Key, "error", err)
			continue
		}
		photos[i].PhotoURL = url
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    photos,
	})
}
