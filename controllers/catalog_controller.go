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

// CreateDefectNodeRequest represents the request body for creating a defect node
type CreateDefectNodeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// CreateDefectTypeRequest represents the request body for creating a defect
// type, optionally linked to catalog services
type CreateDefectTypeRequest struct {
	NodeID      uint    `json:"node_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ServiceIDs  []uint  `json:"service_ids"`
}

// CreateServiceRequest represents the request body for creating a catalog service
type CreateServiceRequest struct {
	Name      string  `json:"name" binding:"required"`
	BasePrice string  `json:"base_price" binding:"required"`
	NormHours float64 `json:"norm_hours"`
}

// ListDefectNodes handles GET /api/v1/catalog/nodes
func ListDefectNodes(c *gin.Context) {
	db := config.GetDB()

	var nodes []models.DefectNode
	if err := db.Order("name ASC").Find(&nodes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query defect nodes",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    nodes,
	})
}

// CreateDefectNode handles POST /api/v1/catalog/nodes (admin only)
func CreateDefectNode(c *gin.Context) {
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

	var req CreateDefectNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Node name is required",
			},
		})
		return
	}

	node := models.DefectNode{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := config.GetDB().Create(&node).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create defect node",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "defect_node_created",
		fmt.Sprintf("Defect node %q created", node.Name))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    node,
	})
}

// ListDefectTypesByNode handles GET /api/v1/catalog/nodes/:id/types
func ListDefectTypesByNode(c *gin.Context) {
	db := config.GetDB()

	var node models.DefectNode
	if err := db.First(&node, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Defect node not found",
			},
		})
		return
	}

	var types []models.DefectType
	if err := db.Where("node_id = ?", node.ID).Order("name ASC").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query defect types",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    types,
	})
}

// ListDefectTypes handles GET /api/v1/catalog/types
func ListDefectTypes(c *gin.Context) {
	db := config.GetDB()

	var types []models.DefectType
	if err := db.Preload("Node").Order("id ASC").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query defect types",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    types,
	})
}

// CreateDefectType handles POST /api/v1/catalog/types (admin only). Linked
// service ids are validated and written to the join table alongside the type.
func CreateDefectType(c *gin.Context) {
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

	var req CreateDefectTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Node id and type name are required",
			},
		})
		return
	}

	db := config.GetDB()

	var node models.DefectNode
	if err := db.First(&node, req.NodeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Defect node not found",
			},
		})
		return
	}

	for _, serviceID := range req.ServiceIDs {
		var service models.Service
		if err := db.First(&service, serviceID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": fmt.Sprintf("Service #%d not found", serviceID),
				},
			})
			return
		}
	}

	defectType := models.DefectType{
		NodeID:      node.ID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := db.Create(&defectType).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create defect type",
			},
		})
		return
	}

	for _, serviceID := range req.ServiceIDs {
		link := models.DefectTypeService{
			DefectTypeID: defectType.ID,
			ServiceID:    serviceID,
		}
		if err := db.Create(&link).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to link defect type to service",
				},
			})
			return
		}
	}

	services.GetAuditService().Record(&actor.UserID, "defect_type_created",
		fmt.Sprintf("Defect type %q created under node %q", defectType.Name, node.Name))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    defectType,
	})
}

// ListServices handles GET /api/v1/catalog/services
func ListServices(c *gin.Context) {
	db := config.GetDB()

	var catalog []models.Service
	if err := db.Order("name ASC").Find(&catalog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query services",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    catalog,
	})
}

// CreateService handles POST /api/v1/catalog/services (admin only)
func CreateService(c *gin.Context) {
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

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Service name and base price are required",
			},
		})
		return
	}

	price, err := decimal.NewFromString(req.BasePrice)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Base price must be a non-negative decimal",
			},
		})
		return
	}

	normHours := req.NormHours
	if normHours <= 0 {
		normHours = 1
	}

	service := models.Service{
		Name:      req.Name,
		BasePrice: price,
		NormHours: normHours,
	}

	if err := config.GetDB().Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create service",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "service_created",
		fmt.Sprintf("Service %q created at %s", service.Name, service.BasePrice.StringFixed(2)))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    service,
	})
}
