package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Infrastructure and utility packages
	"gofulfil/config"
	"gofulfil/internal/pkg/cache"
	"gofulfil/internal/pkg/database"
	"gofulfil/internal/pkg/legacy"
	"gofulfil/internal/pkg/logger"
	"gofulfil/internal/pkg/middleware"
	"gofulfil/internal/pkg/token"

	// Layers wired by dependency injection
	"gofulfil/internal/api/fulfillment"
	"gofulfil/internal/api/operator"
	"gofulfil/internal/api/product"
	"gofulfil/internal/api/router"
	"gofulfil/internal/api/store"
	"gofulfil/internal/api/warehouse"
	"gofulfil/internal/repository/fulfillmentrepo"
	"gofulfil/internal/repository/locationdir"
	"gofulfil/internal/repository/operatorrepo"
	"gofulfil/internal/repository/productrepo"
	"gofulfil/internal/repository/storerepo"
	"gofulfil/internal/repository/warehouserepo"
	"gofulfil/internal/service/fulfillmentservice"
	"gofulfil/internal/service/operatorservice"
	"gofulfil/internal/service/productservice"
	"gofulfil/internal/service/storeservice"
	"gofulfil/internal/service/warehouseservice"
)

func main() {
	// 1. Configuration and initialization
	log.Println("⚡ Starting GoFulfil service...")

	// godotenv.Load() looks for a .env file at the repo root. A missing file
	// is fine: the essential variables may come from the system environment
	// (e.g. Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: .env file not found or unreadable. Loading configs from the system environment only.")
	}

	cfg := config.LoadConfig()
	logg := logger.NewLogger(cfg.LogLevel)
	logg.Info("Configuration loaded.", nil)

	// 2. Infrastructure connections

	// A. Database (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("Failed to connect to the database.", err)
	}
	defer db.Close()
	logg.Info("PostgreSQL connection established.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	logg.Info("Redis connection established.", nil)

	// C. Transaction manager and legacy store manager gateway
	txManager := database.NewTxManager(db, logg)
	legacyGateway := legacy.NewGateway(cfg.LegacyStoreManagerURL, logg)

	// D. Token service (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	logg.Debug("JWT token service initialized.", nil)

	// 3. Dependency injection (Repository -> Service -> Handler)

	locationDirectory := locationdir.NewDirectory()

	warehouseRepo := warehouserepo.NewWarehouseRepository(db, cfg.DBTimeout, logg)
	warehouseSvc := warehouseservice.NewService(warehouseRepo, locationDirectory, txManager, logg)
	warehouseHandler := warehouse.NewHandler(warehouseSvc, logg)
	logg.Debug("Warehouse module initialized.", nil)

	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, logg)
	productSvc := productservice.NewService(productRepo, logg)
	productHandler := product.NewHandler(productSvc, logg)
	logg.Debug("Product module initialized.", nil)

	storeRepo := storerepo.NewStoreRepository(db, cfg.DBTimeout, logg)
	storeSvc := storeservice.NewService(storeRepo, legacyGateway, txManager, logg)
	storeHandler := store.NewHandler(storeSvc, logg)
	logg.Debug("Store module initialized.", nil)

	fulfillmentRepo := fulfillmentrepo.NewFulfillmentRepository(db, cfg.DBTimeout, logg)
	fulfillmentSvc := fulfillmentservice.NewService(fulfillmentRepo, productRepo, storeRepo, warehouseRepo, txManager, logg)
	fulfillmentHandler := fulfillment.NewHandler(fulfillmentSvc, logg)
	logg.Debug("Fulfillment module initialized.", nil)

	operatorRepo := operatorrepo.NewOperatorRepository(db, cfg.DBTimeout, logg)
	operatorSvc := operatorservice.NewService(operatorRepo, tokenSvc, logg)
	operatorHandler := operator.NewHandler(operatorSvc, logg)
	logg.Debug("Operator module initialized.", nil)

	// 4. Router and server setup

	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	rateLimiter := middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	r := router.NewRouter(
		warehouseHandler,
		fulfillmentHandler,
		productHandler,
		storeHandler,
		operatorHandler,
		authMiddleware,
		rateLimiter,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Run and graceful shutdown
	go func() {
		logg.Info("GoFulfil server listening.", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("Server failed.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logg.Info("Shutdown signal received. Stopping server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Error("Forced server shutdown.", err)
	}

	logg.Info("Server stopped cleanly.", nil)
}
