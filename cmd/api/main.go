package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vitrine/pedidos_api/internal/cache"
	"github.com/vitrine/pedidos_api/internal/config"
	"github.com/vitrine/pedidos_api/internal/database"
	"github.com/vitrine/pedidos_api/internal/handler"
	"github.com/vitrine/pedidos_api/internal/middleware"
	"github.com/vitrine/pedidos_api/internal/repository"
	"github.com/vitrine/pedidos_api/internal/scheduling"
	"github.com/vitrine/pedidos_api/internal/service"
	"github.com/vitrine/pedidos_api/internal/sse"
	"github.com/vitrine/pedidos_api/internal/stock"
	"github.com/vitrine/pedidos_api/internal/worker"
)

// main is the application entrypoint for the storefront orders API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting pedidos api")

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid store timezone")
	}

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, "migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Clock, stock and scheduling core
	clk := clock.New()
	stockManager, liveCache := newStockCore(cfg, clk, loc)
	slotManager := scheduling.NewManager(stockManager, scheduling.Options{
		SlotInterval: cfg.Scheduling.SlotInterval,
		LeadTime:     cfg.Scheduling.LeadTime,
		DaysAhead:    cfg.Scheduling.DaysAhead,
	})
	slotCache := cache.NewSlotCache(redisClient, cfg.Cache.SlotTTL, loc, clk.Now)

	// 5. Initialize repositories
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	addonRepo := repository.NewAddonRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// 6. Initialize services
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)

	catalogSvc := service.NewCatalogService(storeRepo, productRepo, addonRepo)
	stockSvc := service.NewStockService(productRepo, liveCache, stockManager, notifier)
	schedulingSvc := service.NewSchedulingService(catalogSvc, slotManager, slotCache)
	orderSvc := service.NewOrderService(catalogSvc, stockSvc, schedulingSvc, productRepo, orderRepo, notifier)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": db,
			"redis":    handler.PingFunc(redisClient.Ping),
		}),
		Catalog:    handler.NewCatalogHandler(catalogSvc, orderSvc),
		Scheduling: handler.NewSchedulingHandler(schedulingSvc),
		Stock:      handler.NewStockHandler(stockSvc),
		Order:      handler.NewOrderHandler(orderSvc),
		SSE:        handler.NewSSEHandler(hub),
	}

	// 8. Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 9. Initialize middleware
	orderLimiter := middleware.NewRateLimiter(clk, cfg.RateLimit.OrdersPerWindow, cfg.RateLimit.Window)
	if cfg.RateLimit.Window > 0 {
		go orderLimiter.Cleanup(ctx, 5*cfg.RateLimit.Window)
	}

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, orderLimiter)

	// 11. Load the stock cache and start workers
	if err := stockSvc.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial stock load failed, sync worker will retry")
	}
	liveCache.Start(ctx)
	go worker.NewStockSyncWorker(stockSvc, clk, cfg.Worker.StockSyncInterval).Start(ctx)
	go worker.NewStockResetWorker(stockSvc, clk, cfg.Worker.StockResetInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()
	liveCache.Stop()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Catalog    *handler.CatalogHandler
	Scheduling *handler.SchedulingHandler
	Stock      *handler.StockHandler
	Order      *handler.OrderHandler
	SSE        *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, orderLimiter *middleware.RateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Storefront routes
	stores := router.Group("/v1/stores/:storeId")
	{
		stores.GET("/products", handlers.Catalog.GetProducts)
		stores.GET("/products/:productId/stock", handlers.Stock.GetStock)
		stores.POST("/quote", handlers.Catalog.Quote)

		stores.GET("/slots", handlers.Scheduling.GetSlots)
		stores.POST("/slots", handlers.Scheduling.PostSlots)
		stores.POST("/schedule/check", handlers.Scheduling.CheckSchedule)

		stores.POST("/orders", orderLimiter.Handle(), handlers.Order.CreateOrder)
	}
	router.GET("/v1/orders/:orderId", handlers.Order.GetOrder)

	// Admin routes
	admin := router.Group("/v1/admin")
	{
		admin.POST("/products/:productId/stock/reset", handlers.Stock.ResetStock)
		admin.POST("/stores/:storeId/slots/invalidate", handlers.Scheduling.InvalidateSlots)
		admin.GET("/stock/stream", handlers.SSE.Stream)
	}
}

// newStockCore builds the stock manager and the live cache. The cache sweeps
// on the reset cadence; the sync worker reloads it on its own interval.
func newStockCore(cfg *config.Config, clk clock.Clock, loc *time.Location) (*stock.Manager, *stock.LiveCache) {
	manager := stock.NewManager(clk, loc)
	return manager, stock.NewLiveCache(manager, cfg.Worker.StockResetInterval)
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
