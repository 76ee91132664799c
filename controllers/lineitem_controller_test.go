package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAddOrderPartFromWarehouse(t *testing.T) {
	db := setupTestDB(t)
	client, car := createTestClientAndCar(t, db)
	order := createTestOrder(t, db, client, car, models.StatusPartsSelection)

	item := models.WarehouseItem{
		Name:     "Oil filter",
		Brand:    "MANN",
		Article:  "W 914/2",
		Price:    decimal.RequireFromString("12.50"),
		Quantity: 8,
	}
	db.Create(&item)

	router := setupTestRouter()
	router.POST("/orders/:id/parts", mockAuthMiddleware(services.Actor{
		UserID: 1, FullName: "Storekeeper", Role: models.RoleStorekeeper,
	}), AddOrderPart)

	w := performJSON(router, http.MethodPost,
		fmt.Sprintf("/orders/%d/parts", order.ID),
		map[string]interface{}{
			"warehouse_item_id": item.ID,
			"quantity":          2,
			// body name/price are ignored when snapshotting from the warehouse
			"name":           "Should be ignored",
			"price_per_unit": "999.99",
		})

	assert.Equal(t, http.StatusCreated, w.Code)

	var part models.OrderPart
	db.Where("order_id = ?", order.ID).First(&part)
	assert.Equal(t, "Oil filter", part.Name)
	assert.Equal(t, "MANN", part.Brand)
	assert.True(t, part.PricePerUnit.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, 2, part.Quantity)
	assert.NotNil(t, part.WarehouseItemID)
	assert.False(t, part.IsConfirmed)
}

func TestAddOrderPartManual(t *testing.T) {
	db := setupTestDB(t)
	client, car := createTestClientAndCar(t, db)
	order := createTestOrder(t, db, client, car, models.StatusApproval)

	router := setupTestRouter()
	router.POST("/orders/:id/parts", mockAuthMiddleware(services.Actor{
		UserID: 1, Role: models.RoleStorekeeper,
	}), AddOrderPart)

	w := performJSON(router, http.MethodPost,
		fmt.Sprintf("/orders/%d/parts", order.ID),
		map[string]interface{}{
			"name":           "Cabin filter",
			"brand":          "MAHLE",
			"price_per_unit": "21.30",
			"quantity":       1,
		})

	assert.Equal(t, http.StatusCreated, w.Code)

	var part models.OrderPart
	db.Where("order_id = ?", order.ID).First(&part)
	assert.Equal(t, "Cabin filter", part.Name)
	assert.Nil(t, part.WarehouseItemID)
	assert.True(t, part.PricePerUnit.Equal(decimal.RequireFromString("21.30")))
}

func TestAddOrderPartRejections(t *testing.T) {
	db := setupTestDB(t)
	client, car := createTestClientAndCar(t, db)
	mutable := createTestOrder(t, db, client, car, models.StatusPartsSelection)
	frozen := createTestOrder(t, db, client, car, models.StatusInWork)

	tests := []struct {
		name           string
		orderID        uint
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Order not in a mutable status",
			orderID:        frozen.ID,
			requestBody:    map[string]interface{}{"name": "Bolt", "price_per_unit": "1.00", "quantity": 1},
			expectedStatus: http.StatusConflict,
			expectedError:  "INVALID_TRANSITION",
		},
		{
			name:           "Zero quantity",
			orderID:        mutable.ID,
			requestBody:    map[string]interface{}{"name": "Bolt", "price_per_unit": "1.00", "quantity": 0},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Negative quantity",
			orderID:        mutable.ID,
			requestBody:    map[string]interface{}{"name": "Bolt", "price_per_unit": "1.00", "quantity": -2},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Manual part without a name",
			orderID:        mutable.ID,
			requestBody:    map[string]interface{}{"price_per_unit": "1.00", "quantity": 1},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Manual part with a bad price",
			orderID:        mutable.ID,
			requestBody:    map[string]interface{}{"name": "Bolt", "price_per_unit": "free", "quantity": 1},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Unknown warehouse item",
			orderID:        mutable.ID,
			requestBody:    map[string]interface{}{"warehouse_item_id": 9999, "quantity": 1},
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/orders/:id/parts", mockAuthMiddleware(services.Actor{
				UserID: 1, Role: models.RoleStorekeeper,
			}), AddOrderPart)

			w := performJSON(router, http.MethodPost,
				fmt.Sprintf("/orders/%d/parts", tt.orderID), tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code)

			response := parseResponse(t, w)
			errorData := response["error"].(map[string]interface{})
			assert.Equal(t, tt.expectedError, errorData["code"])
		})
	}
}

func TestAddOrderWorkFromCatalog(t *testing.T) {
	db := setupTestDB(t)
	client, car := createTestClientAndCar(t, db)
	order := createTestOrder(t, db, client, car, models.StatusApproval)

	service := models.Service{
		Name:      "Wheel alignment",
		BasePrice: decimal.RequireFromString("75.00"),
		NormHours: 0.5,
	}
	db.Create(&service)

	router := setupTestRouter()
	router.POST("/orders/:id/works", mockAuthMiddleware(services.Actor{
		UserID: 1, Role: models.RoleMaster,
	}), AddOrderWork)

	w := performJSON(router, http.MethodPost,
		fmt.Sprintf("/orders/%d/works", order.ID),
		map[string]interface{}{"service_id": service.ID})

	assert.Equal(t, http.StatusCreated, w.Code)

	var work models.OrderWork
	db.Where("order_id = ?", order.ID).First(&work)
	assert.Equal(t, "Wheel alignment", work.ServiceNameSnapshot)
	assert.True(t, work.Price.Equal(decimal.RequireFromString("75.00")))
	assert.Equal(t, 0.5, work.NormHours)
	assert.Equal(t, models.WorkStatusPending, work.Status)
}

func TestAddOrderWorkManual(t *testing.T) {
	db := setupTestDB(t)
	client, car := createTestClientAndCar(t, db)
	order := createTestOrder(t, db, client, car, models.StatusPartsSelection)

	router := setupTestRouter()
	router.POST("/orders/:id/works", mockAuthMiddleware(services.Actor{
		UserID: 1, Role: models.RoleMaster,
	}), AddOrderWork)

	w := performJSON(router, http.MethodPost,
		fmt.Sprintf("/orders/%d/works", order.ID),
		map[string]interface{}{"name": "Custom bracket fabrication", "price": "120.00"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var work models.OrderWork
	db.Where("order_id = ?", order.ID).First(&work)
	assert.Equal(t, "Custom bracket fabrication", work.ServiceNameSnapshot)
	assert.Nil(t, work.ServiceID)
	assert.Equal(t, float64(1), work.NormHours)
}

func TestAddOrderWorkSnapshotSurvivesCatalogEdit(t *testing.T) {
	db := setupTestDB(t)
	client, car := createTestClientAndCar(t, db)
	order := createTestOrder(t, db, client, car, models.StatusApproval)

	service := models.Service{
		Name:      "Wheel alignment",
		BasePrice: decimal.RequireFromString("75.00"),
		NormHours: 0.5,
	}
	db.Create(&service)

	router := setupTestRouter()
	router.POST("/orders/:id/works", mockAuthMiddleware(services.Actor{
		UserID: 1, Role: models.RoleMaster,
	}), AddOrderWork)

	performJSON(router, http.MethodPost,
		fmt.Sprintf("/orders/%d/works", order.ID),
		map[string]interface{}{"service_id": service.ID})

	// Reprice the catalog service after the fact
	db.Model(&service).Update("base_price", decimal.RequireFromString("95.00"))

	var work models.OrderWork
	db.Where("order_id = ?", order.ID).First(&work)
	assert.True(t, work.Price.Equal(decimal.RequireFromString("75.00")),
		"line item price is a snapshot, not a reference")
}

func TestListOrderPartsAndWorks(t *testing.T) {
	db := setupTestDB(t)
	client, car := createTestClientAndCar(t, db)
	order := createTestOrder(t, db, client, car, models.StatusApproval)

	db.Create(&models.OrderWork{OrderID: order.ID, ServiceNameSnapshot: "Work A", Status: models.WorkStatusPending})
	db.Create(&models.OrderWork{OrderID: order.ID, ServiceNameSnapshot: "Work B", Status: models.WorkStatusPending})
	db.Create(&models.OrderPart{OrderID: order.ID, Name: "Part A", PricePerUnit: decimal.RequireFromString("5.00"), Quantity: 1})

	router := setupTestRouter()
	actor := services.Actor{UserID: 1, Role: models.RoleMaster}
	router.GET("/orders/:id/works", mockAuthMiddleware(actor), ListOrderWorks)
	router.GET("/orders/:id/parts", mockAuthMiddleware(actor), ListOrderParts)

	w := performJSON(router, http.MethodGet, fmt.Sprintf("/orders/%d/works", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(t, w)
	assert.Len(t, response["data"].([]interface{}), 2)

	w = performJSON(router, http.MethodGet, fmt.Sprintf("/orders/%d/parts", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response = parseResponse(t, w)
	assert.Len(t, response["data"].([]interface{}), 1)
}
