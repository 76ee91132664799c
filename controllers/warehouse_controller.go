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

// AddWarehouseItemRequest represents the request body for stocking a part
type AddWarehouseItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Brand    string `json:"brand"`
	Article  string `json:"article"`
	Price    string `json:"price" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// ListWarehouseItems handles GET /api/v1/warehouse
func ListWarehouseItems(c *gin.Context) {
	db := config.GetDB()

	var items []models.WarehouseItem
	if err := db.Order("name ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query warehouse items",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// AddWarehouseItem handles POST /api/v1/warehouse - adds stock. An existing
// item with the same name, brand and article has its quantity topped up
// instead of creating a duplicate row.
func AddWarehouseItem(c *gin.Context) {
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

	var req AddWarehouseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Name, price and a positive quantity are required",
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

	db := config.GetDB()

	var item models.WarehouseItem
	err = db.Where("name = ? AND brand = ? AND article = ?", req.Name, req.Brand, req.Article).
		First(&item).Error
	if err == nil {
		if err := db.Model(&item).Updates(map[string]interface{}{
			"quantity": item.Quantity + req.Quantity,
			"price":    price,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update warehouse item",
				},
			})
			return
		}
	} else {
		item = models.WarehouseItem{
			Name:     req.Name,
			Brand:    req.Brand,
			Article:  req.Article,
			Price:    price,
			Quantity: req.Quantity,
		}
		if err := db.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to add warehouse item",
				},
			})
			return
		}
	}

	services.GetAuditService().Record(&actor.UserID, "warehouse_item_added",
		fmt.Sprintf("Warehouse: %q x%d added", item.Name, req.Quantity))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// SearchSupplierParts handles GET /api/v1/warehouse/supplier-search?vin=... -
// queries the external parts supplier for a car's VIN
func SearchSupplierParts(c *gin.Context) {
	vin := c.Query("vin")
	if vin == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "VIN query parameter is required",
			},
		})
		return
	}

	parts, err := services.GetSupplierService().SearchByVIN(vin)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SUPPLIER_ERROR",
				"message": "Supplier lookup failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    parts,
	})
}
