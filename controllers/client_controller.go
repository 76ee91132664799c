package controllers

import (
	"fmt"
	"net/http"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
)

// CreateClientRequest represents the request body for registering a client
type CreateClientRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// CreateCarRequest represents the request body for registering a client's car
type CreateCarRequest struct {
	ClientID     uint   `json:"client_id" binding:"required"`
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year"`
	VIN          string `json:"vin" binding:"required,len=17"`
	LicensePlate string `json:"license_plate"`
}

// ListClients handles GET /api/v1/clients
func ListClients(c *gin.Context) {
	db := config.GetDB()

	var clients []models.Client
	if err := db.Order("full_name ASC").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query clients",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    clients,
	})
}

// CreateClient handles POST /api/v1/clients
func CreateClient(c *gin.Context) {
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

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Full name and phone are required",
			},
		})
		return
	}

	client := models.Client{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
	}

	if err := config.GetDB().Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create client",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "client_created",
		fmt.Sprintf("Client %q registered", client.FullName))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    client,
	})
}

// GetClient handles GET /api/v1/clients/:id
func GetClient(c *gin.Context) {
	db := config.GetDB()

	var client models.Client
	if err := db.First(&client, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Client not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    client,
	})
}

// ListClientCars handles GET /api/v1/clients/:id/cars
func ListClientCars(c *gin.Context) {
	db := config.GetDB()

	var client models.Client
	if err := db.First(&client, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Client not found",
			},
		})
		return
	}

	var cars []models.Car
	if err := db.Where("client_id = ?", client.ID).Find(&cars).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query cars",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cars,
	})
}

// CreateCar handles POST /api/v1/cars
func CreateCar(c *gin.Context) {
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

	var req CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Client id, make, model and a 17-character VIN are required",
			},
		})
		return
	}

	db := config.GetDB()

	var client models.Client
	if err := db.First(&client, req.ClientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Client not found",
			},
		})
		return
	}

	car := models.Car{
		ClientID:     req.ClientID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		VIN:          req.VIN,
		LicensePlate: req.LicensePlate,
	}

	if err := db.Create(&car).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create car",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "car_created",
		fmt.Sprintf("Car %s %s (%s) registered for client #%d", car.Make, car.Model, car.VIN, car.ClientID))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    car,
	})
}

// GetCar handles GET /api/v1/cars/:id
func GetCar(c *gin.Context) {
	db := config.GetDB()

	var car models.Car
	if err := db.Preload("Client").First(&car, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    car,
	})
}

// GetCarHistory handles GET /api/v1/cars/:id/history - the car's finished
// service engagements, newest first
func GetCarHistory(c *gin.Context) {
	db := config.GetDB()

	var car models.Car
	if err := db.First(&car, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	var orders []models.Order
	if err := db.Where("car_id = ? AND status IN ?", car.ID,
		[]models.OrderStatus{models.StatusClosed, models.StatusCancelled}).
		Order("completed_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query service history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}
