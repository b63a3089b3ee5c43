package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/inventra/backend/internal/application/catalog"
	"github.com/inventra/backend/internal/application/identity"
	inventoryapp "github.com/inventra/backend/internal/application/inventory"
	orderapp "github.com/inventra/backend/internal/application/order"
	"github.com/inventra/backend/internal/application/ports"
	stockapp "github.com/inventra/backend/internal/application/stock"
	"github.com/inventra/backend/internal/infrastructure/auth"
	"github.com/inventra/backend/internal/infrastructure/cache"
	"github.com/inventra/backend/internal/infrastructure/catalog"
	"github.com/inventra/backend/internal/infrastructure/config"
	"github.com/inventra/backend/internal/infrastructure/event"
	"github.com/inventra/backend/internal/infrastructure/logger"
	"github.com/inventra/backend/internal/infrastructure/notify"
	"github.com/inventra/backend/internal/infrastructure/persistence"
	"github.com/inventra/backend/internal/interfaces/http/handler"
	"github.com/inventra/backend/internal/interfaces/http/middleware"
	"github.com/inventra/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Inventra Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if cfg.App.Env != "production" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Cache backend: Redis when enabled, in-process otherwise
	var store ports.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		store = redisCache
		log.Info("Redis cache enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		store = cache.NewMemory()
	}

	// Repositories
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	returnRepo := persistence.NewGormReturnOrderRepository(db.DB)
	itemRepo := persistence.NewGormStockItemRepository(db.DB)
	trackingRepo := persistence.NewGormStockTrackingRepository(db.DB)
	locationRepo := persistence.NewGormStockLocationRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	inventoryTxRepo := persistence.NewGormInventoryTransactionRepository(db.DB)
	grantReader := persistence.NewGormGrantReader(db.DB)

	// Transaction scopes
	orderScope := persistence.NewOrderTransactionScope(db.DB)
	stockScope := persistence.NewStockTransactionScope(db.DB)
	inventoryScope := persistence.NewInventoryTransactionScope(db.DB)

	// Ports
	jwtService := auth.NewJWTService(cfg.JWT)
	checker := identity.NewCachedChecker(grantReader, store, cfg.Cache.PermissionTTL, log)
	supplierLookup := catalogapp.NewCachedLookup(
		catalog.NewHTTPLookup(cfg.Catalog, log),
		store,
		cfg.Cache.SupplierTTL,
	)
	eventBus := event.NewInMemoryEventBus(log)
	supplierNotifier := notify.NewLoggingSupplierNotifier(log)

	// Application services
	orderService := orderapp.NewPurchaseOrderService(
		orderScope, orderRepo, supplierLookup, supplierNotifier, eventBus, checker, log,
	)
	returnService := orderapp.NewReturnOrderService(
		orderScope, returnRepo, eventBus, checker, log,
	)
	ledgerService := stockapp.NewLedgerService(
		stockScope, itemRepo, locationRepo, trackingRepo, checker, log,
	)
	inventoryService := inventoryapp.NewService(
		inventoryScope, inventoryRepo, itemRepo, inventoryTxRepo, checker, log,
	)

	// HTTP handlers
	orderHandler := handler.NewPurchaseOrderHandler(orderService)
	returnHandler := handler.NewReturnOrderHandler(returnService)
	stockHandler := handler.NewStockHandler(ledgerService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Env)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, "v1")
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.POST("/:id/submit", orderHandler.Submit)
	orderRoutes.POST("/:id/approve", orderHandler.Approve)
	orderRoutes.POST("/:id/issue", orderHandler.Issue)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.POST("/:id/complete", orderHandler.Complete)
	orderRoutes.POST("/:id/lines", orderHandler.AddLine)
	orderRoutes.PUT("/:id/lines/:line_id", orderHandler.UpdateLine)
	orderRoutes.DELETE("/:id/lines/:line_id", orderHandler.RemoveLine)
	orderRoutes.POST("/:id/receipts", orderHandler.Receive)
	orderRoutes.GET("/:id/returns", returnHandler.ListForOrder)

	returnRoutes := router.NewDomainGroup("returns", "/returns")
	returnRoutes.POST("", returnHandler.Create)
	returnRoutes.GET("/:id", returnHandler.GetByID)
	returnRoutes.POST("/:id/schedule-pickup", returnHandler.SchedulePickup)
	returnRoutes.POST("/:id/in-transit", returnHandler.MarkInTransit)
	returnRoutes.POST("/:id/complete", returnHandler.Complete)
	returnRoutes.POST("/:id/cancel", returnHandler.Cancel)

	stockRoutes := router.NewDomainGroup("stock", "/stock")
	stockRoutes.POST("/items", stockHandler.CreateItem)
	stockRoutes.GET("/items", stockHandler.ListItems)
	stockRoutes.GET("/items/:id", stockHandler.GetItem)
	stockRoutes.GET("/items/:id/history", stockHandler.History)
	stockRoutes.POST("/items/:id/adjust", stockHandler.Adjust)
	stockRoutes.POST("/items/:id/transfer", stockHandler.Transfer)
	stockRoutes.POST("/items/:id/reserve", stockHandler.Reserve)
	stockRoutes.POST("/items/:id/release", stockHandler.Release)
	stockRoutes.POST("/items/:id/status", stockHandler.ChangeStatus)
	stockRoutes.POST("/items/:id/split", stockHandler.Split)
	stockRoutes.POST("/locations", stockHandler.CreateLocation)
	stockRoutes.GET("/locations", stockHandler.ListLocations)
	stockRoutes.GET("/locations/:id", stockHandler.GetLocation)
	stockRoutes.PUT("/policy", stockHandler.UpdatePolicy)

	inventoryRoutes := router.NewDomainGroup("inventory", "/inventories")
	inventoryRoutes.POST("", inventoryHandler.Create)
	inventoryRoutes.GET("", inventoryHandler.List)
	inventoryRoutes.GET("/reorder-report", inventoryHandler.ReorderReport)
	inventoryRoutes.GET("/:id", inventoryHandler.GetByID)
	inventoryRoutes.PUT("/:id", inventoryHandler.Update)
	inventoryRoutes.PUT("/:id/policy", inventoryHandler.ApplyPolicy)
	inventoryRoutes.PUT("/:id/active", inventoryHandler.SetActive)
	inventoryRoutes.GET("/:id/movements", inventoryHandler.Movements)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(orderRoutes).
		Register(returnRoutes).
		Register(stockRoutes).
		Register(inventoryRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness and database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
