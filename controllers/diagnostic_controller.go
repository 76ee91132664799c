package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordDiagnosisRequest represents the request body for saving diagnostic
// results. Duplicate defect type ids intentionally produce duplicate rows.
type RecordDiagnosisRequest struct {
	DefectTypeIDs []uint `json:"defect_type_ids" binding:"required,min=1"`
}

// RecordDiagnosis handles POST /api/v1/orders/:id/diagnostics - records the
// diagnostician's selected defect types against an order in Diagnostics
// status. Each defect type becomes one OrderDefect plus one OrderWork: priced
// from the linked catalog service when one exists, a zero-priced placeholder
// otherwise. Each defect+work pair is written together; earlier pairs survive
// a later failure, matching the legacy save behavior the frontend retries.
func RecordDiagnosis(c *gin.Context) {
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

	var req RecordDiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "At least one defect type id is required",
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

	if order.Status != models.StatusDiagnostics {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": fmt.Sprintf("Diagnostic results can only be recorded in %s status, order is in %s",
					models.StatusDiagnostics, order.Status),
			},
		})
		return
	}

	// Resolve every defect type up front so a bad id fails before any writes
	resolved := make([]models.DefectType, 0, len(req.DefectTypeIDs))
	for _, typeID := range req.DefectTypeIDs {
		var defectType models.DefectType
		if err := db.Preload("Node").First(&defectType, typeID).Error; err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CATALOG_LOOKUP_FAILED",
					"message": fmt.Sprintf("Defect type #%d not found in catalog", typeID),
				},
			})
			return
		}
		resolved = append(resolved, defectType)
	}

	recorded := 0
	for _, defectType := range resolved {
		typeID := defectType.ID
		defect := models.OrderDefect{
			OrderID:         order.ID,
			DiagnosticianID: actor.UserID,
			Description:     fmt.Sprintf("%s: %s", defectType.Node.Name, defectType.Name),
			Comment:         defectType.Description,
			DefectTypeID:    &typeID,
		}

		if err := db.Create(&defect).Error; err != nil {
			diagnosisFailure(c, recorded)
			return
		}

		work, err := buildWorkForDefect(db, &defect, &defectType)
		if err != nil {
			diagnosisFailure(c, recorded)
			return
		}

		if err := db.Create(work).Error; err != nil {
			diagnosisFailure(c, recorded)
			return
		}

		recorded++
	}

	services.GetAuditService().Record(&actor.UserID, "diagnosis_recorded",
		fmt.Sprintf("Order #%d: %d defect(s) recorded", order.ID, recorded))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"recorded": recorded,
		},
	})
}

// buildWorkForDefect materializes the priced work line item for a freshly
// recorded defect. When the defect type links to catalog services, the lowest
// service id wins; name, price and norm hours are snapshotted at this instant.
func buildWorkForDefect(db *gorm.DB, defect *models.OrderDefect, defectType *models.DefectType) (*models.OrderWork, error) {
	var link models.DefectTypeService
	err := db.Where("defect_type_id = ?", defectType.ID).Order("service_id ASC").First(&link).Error
	if err == nil {
		var service models.Service
		if err := db.First(&service, link.ServiceID).Error; err != nil {
			return nil, err
		}
		serviceID := service.ID
		return &models.OrderWork{
			OrderID:             defect.OrderID,
			ServiceID:           &serviceID,
			ServiceNameSnapshot: service.Name,
			Price:               service.BasePrice,
			NormHours:           service.NormHours,
			Status:              models.WorkStatusPending,
			DefectID:            &defect.ID,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// No catalog service maps to this fault: placeholder work priced at zero,
	// named after the defect itself, to be repriced manually
	return &models.OrderWork{
		OrderID:             defect.OrderID,
		ServiceNameSnapshot: defect.Description,
		Price:               decimal.Zero,
		NormHours:           1,
		Status:              models.WorkStatusPending,
		DefectID:            &defect.ID,
	}, nil
}

// diagnosisFailure reports a mid-loop database failure together with how many
// defect+work pairs were committed before it
func diagnosisFailure(c *gin.Context, recorded int) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": fmt.Sprintf("Failed to record diagnosis; %d defect(s) were saved before the failure", recorded),
		},
	})
}

// ListOrderDefects handles GET /api/v1/orders/:id/defects - diagnostic
// results for an order
func ListOrderDefects(c *gin.Context) {
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

	var defects []models.OrderDefect
	if err := db.Where("order_id = ?", order.ID).Order("id ASC").Find(&defects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to query defects",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    defects,
	})
}
