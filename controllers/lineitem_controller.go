package controllers

import (
	"fmt"
	"net/http"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AddOrderPartRequest represents the request body for adding a part line
// item. When warehouse_item_id is set, name/brand/price are snapshotted from
// the warehouse row and the body fields are ignored.
type AddOrderPartRequest struct {
	WarehouseItemID *uint  `json:"warehouse_item_id"`
	Name            string `json:"name"`
	Brand           string `json:"brand"`
	PricePerUnit    string `json:"price_per_unit"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
}

// AddOrderWorkRequest represents the request body for a manually added work
// line item
type AddOrderWorkRequest struct {
	ServiceID *uint  `json:"service_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
}

// lineItemsMutable reports whether parts/works may still be added to the order
func lineItemsMutable(status models.OrderStatus) bool {
	return status == models.StatusPartsSelection || status == models.StatusApproval
}

// AddOrderPart handles POST /api/v1/orders/:id/parts - adds a part line item
// while the order is being assembled (Parts_Selection or Approval)
func AddOrderPart(c *gin.Context) {
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

	var req AddOrderPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Quantity must be a positive integer",
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

	if !lineItemsMutable(order.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": fmt.Sprintf("Parts cannot be added to an order in %s status", order.Status),
			},
		})
		return
	}

	part := models.OrderPart{
		OrderID:  order.ID,
		Quantity: req.Quantity,
	}

	if req.WarehouseItemID != nil {
		var item models.WarehouseItem
		if err := db.First(&item, *req.WarehouseItemID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Warehouse item not found",
				},
			})
			return
		}
		part.WarehouseItemID = req.WarehouseItemID
		part.Name = item.Name
		part.Brand = item.Brand
		part.PricePerUnit = item.Price
	} else {
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Part name is required",
				},
			})
			return
		}
		price, err := decimal.NewFromString(req.PricePerUnit)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Price per unit must be a non-negative decimal",
				},
			})
			return
		}
		part.Name = req.Name
		part.Brand = req.Brand
		part.PricePerUnit = price
	}

	if err := db.Create(&part).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add part",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "part_added",
		fmt.Sprintf("Order #%d: part %q x%d added", order.ID, part.Name, part.Quantity))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    part,
	})
}

// AddOrderWork handles POST /api/v1/orders/:id/works - adds a manual work
// line item, snapshotting from the service catalog when service_id is given
func AddOrderWork(c *gin.Context) {
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

	var req AddOrderWorkRequest
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

	if !lineItemsMutable(order.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": fmt.Sprintf("Works cannot be added to an order in %s status", order.Status),
			},
		})
		return
	}

	work := models.OrderWork{
		OrderID: order.ID,
		Status:  models.WorkStatusPending,
	}

	if req.ServiceID != nil {
		var service models.Service
		if err := db.First(&service, *req.ServiceID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Service not found",
				},
			})
			return
		}
		work.ServiceID = req.ServiceID
		work.ServiceNameSnapshot = service.Name
		work.Price = service.BasePrice
		work.NormHours = service.NormHours
	} else {
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Work name is required",
				},
			})
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Price must be a non-negative decimal",
				},
			})
			return
		}
		work.ServiceNameSnapshot = req.Name
		work.Price = price
		work.NormHours = 1
	}

	if err := db.Create(&work).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add work",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "work_added",
		fmt.Sprintf("Order #%d: work %q added", order.ID, work.ServiceNameSnapshot))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    work,
	})
}

// ListOrderWorks handles GET /api/v1/orders/:id/works
func ListOrderWorks(c *gin.Context) {
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

	var works []models.OrderWork
	if err := db.Where("order_id = ?", order.ID).Order("id ASC").Find(&works).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query works",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    works,
	})
}

// ListOrderParts handles GET /api/v1/orders/:id/parts
func ListOrderParts(c *gin.Context) {
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

	var parts []models.OrderPart
	if err := db.Where("order_id = ?", order.ID).Order("id ASC").Find(&parts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query parts",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    parts,
	})
}
