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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConfirmLineItemsRequest represents the request body for client/master
// confirmation of work and part line items
type ConfirmLineItemsRequest struct {
	ConfirmedWorkIDs []uint `json:"confirmed_work_ids"`
	ConfirmedPartIDs []uint `json:"confirmed_part_ids"`
}

// WorkAssignment is one (work, worker) pair in an assignment request
type WorkAssignment struct {
	WorkID   uint `json:"work_id" binding:"required"`
	WorkerID uint `json:"worker_id" binding:"required"`
}

// AssignWorkersRequest represents the request body for worker assignment
type AssignWorkersRequest struct {
	WorkAssignments []WorkAssignment `json:"work_assignments" binding:"required,min=1,dive"`
	MainWorkerID    *uint            `json:"main_worker_id"`
}

// UpdateWorkStatusRequest represents the request body for a work status change
type UpdateWorkStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ConfirmLineItems handles POST /api/v1/orders/:id/confirm - marks the named
// work and part line items as confirmed. Ids that do not belong to the order
// are silent no-ops (updates are scoped to the order). Confirming a work also
// confirms its origin defect. Order status is never touched here: the order
// stays in Approval until workers are assigned.
func ConfirmLineItems(c *gin.Context) {
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

	var req ConfirmLineItemsRequest
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

	if len(req.ConfirmedWorkIDs) > 0 {
		if err := db.Model(&models.OrderWork{}).
			Where("id IN ? AND order_id = ?", req.ConfirmedWorkIDs, order.ID).
			Update("is_confirmed", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to confirm works",
				},
			})
			return
		}

		// A confirmed work confirms the fault it was created from
		if err := db.Model(&models.OrderDefect{}).
			Where("order_id = ? AND id IN (?)", order.ID,
				db.Model(&models.OrderWork{}).Select("defect_id").
					Where("id IN ? AND order_id = ? AND defect_id IS NOT NULL", req.ConfirmedWorkIDs, order.ID)).
			Update("is_confirmed", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to confirm defects",
				},
			})
			return
		}
	}

	if len(req.ConfirmedPartIDs) > 0 {
		if err := db.Model(&models.OrderPart{}).
			Where("id IN ? AND order_id = ?", req.ConfirmedPartIDs, order.ID).
			Update("is_confirmed", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to confirm parts",
				},
			})
			return
		}
	}

	total, err := recalculateOrderTotal(db, &order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to recalculate order total",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "order_confirmed",
		fmt.Sprintf("Order #%d: %d work(s), %d part(s) confirmed, total %s",
			order.ID, len(req.ConfirmedWorkIDs), len(req.ConfirmedPartIDs), total.StringFixed(2)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_amount": total,
		},
	})
}

// recalculateOrderTotal recomputes order.total_amount from confirmed line
// items: confirmed works plus confirmed parts times quantity
func recalculateOrderTotal(db *gorm.DB, order *models.Order) (decimal.Decimal, error) {
	var works []models.OrderWork
	if err := db.Where("order_id = ? AND is_confirmed = ?", order.ID, true).Find(&works).Error; err != nil {
		return decimal.Zero, err
	}

	var parts []models.OrderPart
	if err := db.Where("order_id = ? AND is_confirmed = ?", order.ID, true).Find(&parts).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, work := range works {
		total = total.Add(work.Price)
	}
	for _, part := range parts {
		total = total.Add(part.PricePerUnit.Mul(decimal.NewFromInt(int64(part.Quantity))))
	}

	if err := db.Model(order).Update("total_amount", total).Error; err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

// AssignWorkers handles POST /api/v1/orders/:id/assign - assigns workers to
// works and moves the order into In_Work. This is the only path into In_Work:
// the status change and the main worker are written in one transaction. The
// per-work assignment updates run before that transaction and are idempotent,
// so a retry after a partial failure converges.
func AssignWorkers(c *gin.Context) {
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

	var req AssignWorkersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "At least one work assignment is required",
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

	if order.Status != models.StatusApproval {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": fmt.Sprintf("Workers can only be assigned in %s status, order is in %s",
					models.StatusApproval, order.Status),
			},
		})
		return
	}

	// Every referenced worker must exist and hold the Worker role
	workerIDs := make([]uint, 0, len(req.WorkAssignments)+1)
	for _, assignment := range req.WorkAssignments {
		workerIDs = append(workerIDs, assignment.WorkerID)
	}
	if req.MainWorkerID != nil {
		workerIDs = append(workerIDs, *req.MainWorkerID)
	}
	for _, workerID := range workerIDs {
		var worker models.User
		if err := db.Where("id = ? AND role = ?", workerID, models.RoleWorker).First(&worker).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": fmt.Sprintf("Worker #%d not found", workerID),
				},
			})
			return
		}
	}

	for _, assignment := range req.WorkAssignments {
		workerID := assignment.WorkerID
		result := db.Model(&models.OrderWork{}).
			Where("id = ? AND order_id = ?", assignment.WorkID, order.ID).
			Updates(map[string]interface{}{
				"worker_id": workerID,
				"status":    models.WorkStatusPending,
			})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": fmt.Sprintf("Failed to assign worker to work #%d", assignment.WorkID),
				},
			})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": fmt.Sprintf("Work #%d not found on order #%d", assignment.WorkID, order.ID),
				},
			})
			return
		}
	}

	// Status and main worker flip together or not at all
	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": models.StatusInWork}
		if req.MainWorkerID != nil {
			updates["worker_id"] = *req.MainWorkerID
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to move order into work",
			},
		})
		return
	}

	mainWorker := "none"
	if req.MainWorkerID != nil {
		mainWorker = strconv.FormatUint(uint64(*req.MainWorkerID), 10)
	}
	services.GetAuditService().Record(&actor.UserID, "workers_assigned",
		fmt.Sprintf("Order #%d: %d work(s) assigned, main worker %s",
			order.ID, len(req.WorkAssignments), mainWorker))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateWorkStatus handles PUT /api/v1/orders/:id/works/:workId/status - the
// assigned worker advances a work through Pending -> In_Progress -> Done.
// Works only move while the order itself is In_Work, and only forward.
func UpdateWorkStatus(c *gin.Context) {
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

	var req UpdateWorkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Target work status is required",
			},
		})
		return
	}

	if req.Status != models.WorkStatusPending &&
		req.Status != models.WorkStatusInProgress &&
		req.Status != models.WorkStatusDone {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": fmt.Sprintf("Unknown work status %q", req.Status),
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

	if order.Status != models.StatusInWork {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": fmt.Sprintf("Works can only change in %s status, order is in %s",
					models.StatusInWork, order.Status),
			},
		})
		return
	}

	var work models.OrderWork
	if err := db.Where("id = ? AND order_id = ?", c.Param("workId"), order.ID).
		First(&work).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Work not found on this order",
			},
		})
		return
	}

	if actor.Role == models.RoleWorker && (work.WorkerID == nil || *work.WorkerID != actor.UserID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Work is assigned to another worker",
			},
		})
		return
	}

	if !models.WorkStatusCanTransitionTo(work.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": fmt.Sprintf("Work cannot move from %s to %s", work.Status, req.Status),
			},
		})
		return
	}

	if err := db.Model(&work).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update work status",
			},
		})
		return
	}

	services.GetAuditService().Record(&actor.UserID, "work_status_changed",
		fmt.Sprintf("Order #%d work #%d -> %s", work.OrderID, work.ID, req.Status))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    work,
	})
}
