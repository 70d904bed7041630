package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/rentbook/api/internal/config"
	"github.com/rentbook/api/internal/database"
	"github.com/rentbook/api/internal/handlers"
	"github.com/rentbook/api/internal/logger"
	"github.com/rentbook/api/internal/middleware"
	"github.com/rentbook/api/internal/repository"
	"github.com/rentbook/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting RentBook API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository and service layers
	buildingRepo := repository.NewBuildingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	buildingService := services.NewBuildingService(buildingRepo, log)
	roomService := services.NewRoomService(roomRepo, log)
	tenantService := services.NewTenantService(tenantRepo, log)
	paymentService := services.NewPaymentService(paymentRepo, tenantRepo, log)
	dashboardService := services.NewDashboardService(statsRepo, log)

	// Initialize handlers
	buildingHandler := handlers.NewBuildingHandler(buildingService)
	roomHandler := handlers.NewRoomHandler(roomService, tenantService)
	tenantHandler := handlers.NewTenantHandler(tenantService, paymentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Register API v1 routes. Everything below requires a valid token;
	// structural changes and new payment demands additionally require the
	// owner role. Recording money received is open to staff.
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAuth(cfg.Auth.JWTSecret))
	{
		buildings := v1.Group("/buildings")
		{
			buildings.GET("", buildingHandler.List)
			buildings.GET("/:id", buildingHandler.Get)
			buildings.POST("", middleware.RequireOwner(), buildingHandler.Create)
			buildings.PUT("/:id", middleware.RequireOwner(), buildingHandler.Update)
			buildings.DELETE("/:id", middleware.RequireOwner(), buildingHandler.Delete)
		}

		rooms := v1.Group("/rooms")
		{
			rooms.GET("", roomHandler.List)
			rooms.GET("/:id", roomHandler.Get)
			rooms.GET("/:id/tenants", roomHandler.Tenants)
			rooms.POST("", middleware.RequireOwner(), roomHandler.Create)
			rooms.PUT("/:id", middleware.RequireOwner(), roomHandler.Update)
			rooms.DELETE("/:id", middleware.RequireOwner(), roomHandler.Delete)
		}

		tenants := v1.Group("/tenants")
		{
			tenants.GET("", tenantHandler.List)
			tenants.GET("/:id", tenantHandler.Get)
			tenants.GET("/:id/payments", tenantHandler.Payments)
			tenants.POST("", middleware.RequireOwner(), tenantHandler.Create)
			tenants.PUT("/:id", middleware.RequireOwner(), tenantHandler.Update)
			tenants.POST("/:id/deactivate", middleware.RequireOwner(), tenantHandler.Deactivate)
		}

		payments := v1.Group("/payments")
		{
			payments.GET("", paymentHandler.List)
			payments.GET("/due-today", paymentHandler.DueToday)
			payments.GET("/overdue", paymentHandler.Overdue)
			payments.GET("/:id", paymentHandler.Get)
			payments.GET("/:id/transactions", paymentHandler.Transactions)
			payments.GET("/:id/reminder", paymentHandler.Reminder)
			payments.POST("", middleware.RequireOwner(), paymentHandler.Create)
			payments.POST("/:id/transactions", paymentHandler.RecordTransaction)
			payments.POST("/:id/mark-paid", paymentHandler.MarkPaid)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.Stats)
			dashboard.GET("/revenue", dashboardHandler.Revenue)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
