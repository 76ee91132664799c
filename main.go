package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/d-muravev/service-station-api/config"
	"github.com/d-muravev/service-station-api/controllers"
	"github.com/d-muravev/service-station-api/logging"
	"github.com/d-muravev/service-station-api/middleware"
	"github.com/d-muravev/service-station-api/models"
	"github.com/d-muravev/service-station-api/services"
)

func main() {
	log.Println("Starting Service Station API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		logging.InitProduction()
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logging.GetSugaredLogger()
	defer logger.Sync()

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	if err := migrateModels(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize services
	services.InitSessionService()
	services.InitAuditService()
	services.InitSupplierService()
	if _, err := services.InitS3Service(); err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitPhotoService(services.GetS3Service())

	router := setupRouter()

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// migrateModels runs GORM auto-migration for all persistent models
func migrateModels() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Car{},
		&models.Order{},
		&models.OrderDefect{},
		&models.OrderWork{},
		&models.OrderPart{},
		&models.OrderPhoto{},
		&models.DefectNode{},
		&models.DefectType{},
		&models.Service{},
		&models.DefectTypeService{},
		&models.WarehouseItem{},
		&models.AuditLog{},
		&models.SystemSetting{},
	)
}

// setupRouter builds the Gin engine with CORS and all API routes
func setupRouter() *gin.Engine {
	router := gin.Default()

	// The desktop frontend is served from a webview origin
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"tauri://localhost", "http://localhost:1420"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", middleware.SessionTokenHeader},
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
			auth.POST("/login/pin", controllers.LoginWorker)
			auth.POST("/logout", middleware.RequireAuth(), controllers.Logout)
			auth.GET("/session", middleware.RequireAuth(), controllers.GetSession)
		}

		protected := v1.Group("")
		protected.Use(middleware.RequireAuth())
		{
			orders := protected.Group("/orders")
			{
				orders.POST("", middleware.RequireRole(models.RoleMaster, models.RoleAdmin), controllers.CreateOrder)
				orders.GET("", controllers.ListOrders)
				orders.GET("/archive", middleware.RequireRole(models.RoleMaster, models.RoleAdmin), controllers.ListArchivedOrders)
				orders.GET("/:id", controllers.GetOrder)
				orders.PUT("/:id/status", controllers.UpdateOrderStatus)
				orders.POST("/:id/cancel", middleware.RequireRole(models.RoleMaster, models.RoleAdmin), controllers.CancelOrder)

				orders.POST("/:id/diagnostics", middleware.RequireRole(models.RoleDiagnostician, models.RoleAdmin), controllers.RecordDiagnosis)
				orders.GET("/:id/defects", controllers.ListOrderDefects)

				orders.POST("/:id/confirm", middleware.RequireRole(models.RoleMaster, models.RoleStorekeeper, models.RoleAdmin), controllers.ConfirmLineItems)
				orders.POST("/:id/assign", middleware.RequireRole(models.RoleMaster, models.RoleAdmin), controllers.AssignWorkers)
				orders.PUT("/:id/works/:workId/status", middleware.RequireRole(models.RoleWorker, models.RoleMaster, models.RoleAdmin), controllers.UpdateWorkStatus)

				orders.POST("/:id/parts", middleware.RequireRole(models.RoleStorekeeper, models.RoleAdmin), controllers.AddOrderPart)
				orders.GET("/:id/parts", controllers.ListOrderParts)
				orders.POST("/:id/works", middleware.RequireRole(models.RoleStorekeeper, models.RoleMaster, models.RoleAdmin), controllers.AddOrderWork)
				orders.GET("/:id/works", controllers.ListOrderWorks)

				orders.POST("/:id/photos", controllers.UploadOrderPhoto)
				orders.GET("/:id/photos", controllers.ListOrderPhotos)
			}

			catalog := protected.Group("/catalog")
			{
				catalog.GET("/nodes", controllers.ListDefectNodes)
				catalog.POST("/nodes", middleware.RequireRole(models.RoleAdmin), controllers.CreateDefectNode)
				catalog.GET("/nodes/:id/types", controllers.ListDefectTypesByNode)
				catalog.GET("/types", controllers.ListDefectTypes)
				catalog.POST("/types", middleware.RequireRole(models.RoleAdmin), controllers.CreateDefectType)
				catalog.GET("/services", controllers.ListServices)
				catalog.POST("/services", middleware.RequireRole(models.RoleAdmin), controllers.CreateService)
			}

			protected.GET("/clients", controllers.ListClients)
			protected.POST("/clients", middleware.RequireRole(models.RoleMaster, models.RoleAdmin), controllers.CreateClient)
			protected.GET("/clients/:id", controllers.GetClient)
			protected.GET("/clients/:id/cars", controllers.ListClientCars)
			protected.POST("/cars", middleware.RequireRole(models.RoleMaster, models.RoleAdmin), controllers.CreateCar)
			protected.GET("/cars/:id", controllers.GetCar)
			protected.GET("/cars/:id/history", controllers.GetCarHistory)

			users := protected.Group("/users")
			users.Use(middleware.RequireRole(models.RoleAdmin))
			{
				users.GET("", controllers.ListUsers)
				users.POST("", controllers.CreateUser)
				users.PUT("/:id", controllers.UpdateUser)
				users.DELETE("/:id", controllers.DeleteUser)
			}

			warehouse := protected.Group("/warehouse")
			warehouse.Use(middleware.RequireRole(models.RoleStorekeeper, models.RoleAdmin))
			{
				warehouse.GET("", controllers.ListWarehouseItems)
				warehouse.POST("", controllers.AddWarehouseItem)
				warehouse.GET("/supplier-search", controllers.SearchSupplierParts)
			}

			admin := protected.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/settings", controllers.GetSettings)
				admin.PUT("/settings", controllers.UpdateSettings)
				admin.GET("/logs", controllers.ListAuditLogs)
			}
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service Station API is running",
	})
}
