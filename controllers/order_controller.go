package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents the request body for creating an order.
// Prepayment crosses the boundary as a decimal string.
type CreateOrderRequest struct {
	ClientID       uint    `json:"client_id" binding:"required"`
	CarID          uint    `json:"car_id" binding:"required"`
	Complaint      *string `json:"complaint"`
	CurrentMileage *int    `json:"current_mileage"`
	Prepayment     string  `json:"prepayment"`
}

// UpdateOrderStatusRequest represents the request body for a status transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelOrderRequest represents the request body for cancelling an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders - opens a new repair order in
// Diagnostics status (masters and admins only)
func CreateOrder(c *gin.Context) {
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

	var req CreateOrderRequest
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

	prepayment := decimal.Zero
	if req.Prepayment != "" {
		prepayment, err = decimal.NewFromString(req.Prepayment)
		if err != nil || prepayment.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Prepayment must be a non-negative decimal",
				},
			})
			return
		}
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

	var car models.Car
	if err := db.First(&car, req.CarID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Car not found",
			},
		})
		return
	}

	if car.ClientID != client.ID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Car does not belong to the client",
			},
		})
		return
	}

	order := models.Order{
		ClientID:       req.ClientID,
		CarID:          req.CarID,
		MasterID:       &actor.UserID,
		Status:         models.StatusDiagnostics,
		Complaint:      req.Complaint,
		CurrentMileage: req.CurrentMileage,
		Prepayment:     prepayment,
		TotalAmount:    decimal.Zero,
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	if err := db.Preload("Client").Preload("Car").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "order_created",
		fmt.Sprintf("Order #%d created for client #%d, car #%d", order.ID, order.ClientID, order.CarID))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - returns the orders visible to the
// actor's role. Visibility is a business rule, not a storage concern:
// masters see every open order, storekeepers the parts/approval/work window,
// diagnosticians the intake queue, workers only orders they execute.
func ListOrders(c *gin.Context) {
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
	query := db.Model(&models.Order{}).Preload("Client").Preload("Car").Order("created_at DESC")

	switch actor.Role {
	case models.RoleAdmin:
		// admins see everything
	case models.RoleMaster:
		query = query.Where("status NOT IN ?", []models.OrderStatus{models.StatusClosed, models.StatusCancelled})
	case models.RoleStorekeeper:
		query = query.Where("status IN ?", []models.OrderStatus{
			models.StatusPartsSelection, models.StatusApproval, models.StatusInWork,
		})
	case models.RoleDiagnostician:
		query = query.Where("status = ?", models.StatusDiagnostics)
	case models.RoleWorker:
		query = query.Where("status = ?", models.StatusInWork).
			Where("worker_id = ? OR id IN (?)", actor.UserID,
				db.Model(&models.OrderWork{}).Select("order_id").Where("worker_id = ?", actor.UserID))
	default:
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Role has no order view",
			},
		})
		return
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// ListArchivedOrders handles GET /api/v1/orders/archive - closed and
// cancelled orders (masters and admins only)
func ListArchivedOrders(c *gin.Context) {
	db := config.GetDB()

	var orders []models.Order
	if err := db.Preload("Client").Preload("Car").
		Where("status IN ?", []models.OrderStatus{models.StatusClosed, models.StatusCancelled}).
		Order("completed_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query archived orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Client").Preload("Car").Preload("Master").Preload("Worker").
		First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status - the generic
// status transition. Forward-only, no skipping; In_Work is reserved for the
// worker assignment operation and rejected here.
func UpdateOrderStatus(c *gin.Context) {
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

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Target status is required",
			},
		})
		return
	}

	target, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": fmt.Sprintf("Unknown order status %q", req.Status),
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

	// In_Work requires the main worker to be set atomically with the status
	// change, so it is only reachable through the assignment operation
	if target == models.StatusInWork {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": "In_Work is only reachable via worker assignment",
			},
		})
		return
	}

	if !order.Status.CanTransitionTo(target) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": fmt.Sprintf("Cannot transition from %s to %s", order.Status, target),
			},
		})
		return
	}

	oldStatus := order.Status
	updates := map[string]interface{}{"status": target}
	if target == models.StatusClosed {
		now := time.Now()
		updates["completed_at"] = &now
	}

	if err := db.Model(&order).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "order_status_changed",
		fmt.Sprintf("Order #%d: %s -> %s", order.ID, oldStatus, target))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - abandons an order from
// any non-terminal status, recording the reason
func CancelOrder(c *gin.Context) {
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

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Cancellation reason is required",
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

	if !order.Status.CanTransitionTo(models.StatusCancelled) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": fmt.Sprintf("Cannot cancel an order in %s status", order.Status),
			},
		})
		return
	}

	oldStatus := order.Status
	now := time.Now()
	updates := map[string]interface{}{
		"status":        models.StatusCancelled,
		"cancel_reason": req.Reason,
		"completed_at":  &now,
	}

	if err := db.Model(&order).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to cancel order",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "order_cancelled",
		fmt.Sprintf("Order #%d cancelled (was %s): %s", order.ID, oldStatus, req.Reason))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
