package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupIntegrationEnv wires an in-memory database and fresh services behind
// the real router, exactly as main does against PostgreSQL.
func setupIntegrationEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	config.SetDB(db)

	if err := migrateModels(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	services.InitSessionService()
	services.InitAuditService()
	services.InitSupplierService()
	mock := services.NewMockS3Service()
	mock.SetAsMockForTesting()
	services.InitPhotoService(mock)

	return setupRouter(), db
}

func request(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.SessionTokenHeader, token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return response
}

func seedStaff(t *testing.T, db *gorm.DB) {
	passwordHash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	pinHash, _ := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)

	users := []struct {
		fullName string
		role     string
		login    string
	}{
		{"Station Admin", models.RoleAdmin, "admin"},
		{"Sergey Master", models.RoleMaster, "master"},
		{"Dmitry Diag", models.RoleDiagnostician, "diag"},
		{"Olga Storekeeper", models.RoleStorekeeper, "keeper"},
	}
	for _, u := range users {
		login := u.login
		hash := string(passwordHash)
		if err := db.Create(&models.User{
			FullName:     u.fullName,
			Role:         u.role,
			Login:        &login,
			PasswordHash: &hash,
			Status:       models.UserStatusActive,
		}).Error; err != nil {
			t.Fatalf("Failed to seed %s: %v", u.role, err)
		}
	}

	pin := string(pinHash)
	if err := db.Create(&models.User{
		FullName: "Viktor Worker",
		Role:     models.RoleWorker,
		PinHash:  &pin,
		Status:   models.UserStatusActive,
	}).Error; err != nil {
		t.Fatalf("Failed to seed worker: %v", err)
	}
}

func loginAs(t *testing.T, router *gin.Engine, login string) string {
	w := request(router, http.MethodPost, "/api/v1/auth/login", "",
		map[string]interface{}{"login": login, "password": "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("Login as %s failed: %d %s", login, w.Code, w.Body.String())
	}
	data := decode(t, w)["data"].(map[string]interface{})
	return data["session_token"].(string)
}

func TestHealthEndpointIntegration(t *testing.T) {
	router, _ := setupIntegrationEnv(t)

	w := request(router, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.True(t, response["success"].(bool))
}

// TestOrderLifecycleIntegration drives one repair order through the whole
// pipeline with each role acting through the HTTP surface.
func TestOrderLifecycleIntegration(t *testing.T) {
	router, db := setupIntegrationEnv(t)
	seedStaff(t, db)

	// Catalog: one node, one defect type mapped to a priced service
	node := models.DefectNode{Name: "Brakes"}
	db.Create(&node)
	defectType := models.DefectType{NodeID: node.ID, Name: "Worn front pads"}
	db.Create(&defectType)
	service := models.Service{
		Name:      "Front brake pad replacement",
		BasePrice: decimal.RequireFromString("500.00"),
		NormHours: 1.5,
	}
	db.Create(&service)
	db.Create(&models.DefectTypeService{DefectTypeID: defectType.ID, ServiceID: service.ID})

	masterToken := loginAs(t, router, "master")
	diagToken := loginAs(t, router, "diag")
	keeperToken := loginAs(t, router, "keeper")

	// Master registers the client and the car
	w := request(router, http.MethodPost, "/api/v1/clients", masterToken,
		map[string]interface{}{"full_name": "Ivan Petrov", "phone": "+79990001122"})
	assert.Equal(t, http.StatusCreated, w.Code)
	clientID := decode(t, w)["data"].(map[string]interface{})["id"].(float64)

	w = request(router, http.MethodPost, "/api/v1/cars", masterToken,
		map[string]interface{}{
			"client_id": clientID, "make": "Toyota", "model": "Corolla",
			"year": 2018, "vin": "JTDBR32E530123456",
		})
	assert.Equal(t, http.StatusCreated, w.Code)
	carID := decode(t, w)["data"].(map[string]interface{})["id"].(float64)

	// Master opens the order
	w = request(router, http.MethodPost, "/api/v1/orders", masterToken,
		map[string]interface{}{
			"client_id": clientID, "car_id": carID,
			"complaint": "Squealing brakes", "prepayment": "100.00",
		})
	assert.Equal(t, http.StatusCreated, w.Code)
	orderData := decode(t, w)["data"].(map[string]interface{})
	orderID := orderData["id"].(float64)
	orderPath := "/api/v1/orders/" + jsonID(orderID)
	assert.Equal(t, "Diagnostics", orderData["status"])

	// Diagnostician sees the intake queue and records the findings
	w = request(router, http.MethodGet, "/api/v1/orders", diagToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"].([]interface{}), 1)

	w = request(router, http.MethodPost, orderPath+"/diagnostics", diagToken,
		map[string]interface{}{"defect_type_ids": []float64{float64(defectType.ID)}})
	assert.Equal(t, http.StatusCreated, w.Code)

	// The diagnosis produced a priced work line item
	var works []models.OrderWork
	db.Where("order_id = ?", orderID).Find(&works)
	assert.Len(t, works, 1)
	assert.True(t, works[0].Price.Equal(decimal.RequireFromString("500.00")))

	// Master advances the order into parts selection
	w = request(router, http.MethodPut, orderPath+"/status", masterToken,
		map[string]interface{}{"status": "Parts_Selection"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Storekeeper adds the pads
	w = request(router, http.MethodPost, orderPath+"/parts", keeperToken,
		map[string]interface{}{"name": "Brake pads front", "brand": "TRW", "price_per_unit": "44.00", "quantity": 2})
	assert.Equal(t, http.StatusCreated, w.Code)
	partID := decode(t, w)["data"].(map[string]interface{})["id"].(float64)

	// Into approval
	w = request(router, http.MethodPut, orderPath+"/status", masterToken,
		map[string]interface{}{"status": "Approval"})
	assert.Equal(t, http.StatusOK, w.Code)

	// In_Work through the generic transition is rejected
	w = request(router, http.MethodPut, orderPath+"/status", masterToken,
		map[string]interface{}{"status": "In_Work"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Master confirms the work and the part
	w = request(router, http.MethodPost, orderPath+"/confirm", masterToken,
		map[string]interface{}{
			"confirmed_work_ids": []float64{float64(works[0].ID)},
			"confirmed_part_ids": []float64{partID},
		})
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	db.First(&order, orderID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("588.00")))
	assert.Equal(t, models.StatusApproval, order.Status)

	// Worker logs in with the PIN
	w = request(router, http.MethodPost, "/api/v1/auth/login/pin", "",
		map[string]interface{}{"pin": "4321"})
	assert.Equal(t, http.StatusOK, w.Code)
	workerData := decode(t, w)["data"].(map[string]interface{})
	workerToken := workerData["session_token"].(string)
	workerID := workerData["user"].(map[string]interface{})["id"].(float64)

	// Before assignment the worker sees nothing
	w = request(router, http.MethodGet, "/api/v1/orders", workerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"].([]interface{}), 0)

	// Master assigns the worker; the order moves into work
	w = request(router, http.MethodPost, orderPath+"/assign", masterToken,
		map[string]interface{}{
			"work_assignments": []map[string]interface{}{
				{"work_id": works[0].ID, "worker_id": workerID},
			},
			"main_worker_id": workerID,
		})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&order, orderID)
	assert.Equal(t, models.StatusInWork, order.Status)

	// Now the worker sees the order and works the job to completion
	w = request(router, http.MethodGet, "/api/v1/orders", workerToken, nil)
	assert.Len(t, decode(t, w)["data"].([]interface{}), 1)

	workPath := orderPath + "/works/" + jsonID(float64(works[0].ID)) + "/status"

	// Pending straight to Done is rejected, works advance one step at a time
	w = request(router, http.MethodPut, workPath, workerToken,
		map[string]interface{}{"status": "Done"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = request(router, http.MethodPut, workPath, workerToken,
		map[string]interface{}{"status": "In_Progress"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodPut, workPath, workerToken,
		map[string]interface{}{"status": "Done"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Master wraps up: Ready, then Closed
	w = request(router, http.MethodPut, orderPath+"/status", masterToken,
		map[string]interface{}{"status": "Ready"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodPut, orderPath+"/status", masterToken,
		map[string]interface{}{"status": "Closed"})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&order, orderID)
	assert.Equal(t, models.StatusClosed, order.Status)
	assert.NotNil(t, order.CompletedAt)

	// The closed order is frozen
	w = request(router, http.MethodPost, orderPath+"/cancel", masterToken,
		map[string]interface{}{"reason": "Too late"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// And shows up in the archive
	w = request(router, http.MethodGet, "/api/v1/orders/archive", masterToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"].([]interface{}), 1)

	// The whole flow left an audit trail
	var auditCount int64
	db.Model(&models.AuditLog{}).Count(&auditCount)
	assert.Greater(t, auditCount, int64(5))
}

func TestRoleGatesIntegration(t *testing.T) {
	router, db := setupIntegrationEnv(t)
	seedStaff(t, db)

	keeperToken := loginAs(t, router, "keeper")
	adminToken := loginAs(t, router, "admin")

	// Storekeeper cannot manage users
	w := request(router, http.MethodGet, "/api/v1/users", keeperToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin can
	w = request(router, http.MethodGet, "/api/v1/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Neither storekeeper nor diagnostician can touch work statuses
	diagToken := loginAs(t, router, "diag")
	body := map[string]interface{}{"status": "In_Progress"}
	w = request(router, http.MethodPut, "/api/v1/orders/1/works/1/status", keeperToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = request(router, http.MethodPut, "/api/v1/orders/1/works/1/status", diagToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// No token at all
	w = request(router, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutIntegration(t *testing.T) {
	router, db := setupIntegrationEnv(t)
	seedStaff(t, db)

	token := loginAs(t, router, "master")

	w := request(router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The revoked token is dead
	w = request(router, http.MethodGet, "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// jsonID renders a JSON-decoded numeric id back into a path segment
func jsonID(id float64) string {
	return strconv.FormatUint(uint64(id), 10)
}
