package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/holdings/config"
	"github.com/epeers/holdings/docs"
	"github.com/epeers/holdings/internal/alphavantage"
	"github.com/epeers/holdings/internal/cache"
	"github.com/epeers/holdings/internal/database"
	"github.com/epeers/holdings/internal/handlers"
	"github.com/epeers/holdings/internal/market"
	"github.com/epeers/holdings/internal/middleware"
	"github.com/epeers/holdings/internal/repository"
	"github.com/epeers/holdings/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	// Create context for initialization
	ctx := context.Background()

	// Optional database: without it the market cache lives in STORAGE_PATH
	// and fund constituents are not persisted
	var marketStore market.Store
	var fundStore services.FundStore
	if cfg.PGURL != "" {
		db, err := database.New(ctx, cfg.PGURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		marketStore = repository.NewMarketCacheRepository(db.Pool)
		fundStore = repository.NewFundRepository(db.Pool)
	} else {
		fileStore, err := market.NewFileStore(cfg.StoragePath)
		if err != nil {
			log.Fatalf("Failed to open market cache: %v", err)
		}
		marketStore = fileStore
	}

	// Optional AlphaVantage client
	var avClient *alphavantage.Client
	if cfg.AVKey != "" {
		avClient = alphavantage.NewClient(cfg.AVKey, alphavantage.WithRateLimit(cfg.AVRequestsPerMinute))
	} else {
		log.Warn("AV_KEY is not set: exchange segments load from cache only and remote fund lookups are disabled")
	}

	// Build the reference market index
	hub, exchanges := buildHub(ctx, cfg, avClient, marketStore)
	log.Infof("Market index segments: %v", hub.Segments())

	// Reload stale exchange segments while running
	if avClient != nil && cfg.MarketRefreshSchedule != "" && len(exchanges) > 0 {
		refresher, err := market.NewRefresher(cfg.MarketRefreshSchedule, exchanges...)
		if err != nil {
			log.Fatalf("Failed to schedule market refresh: %v", err)
		}
		refresher.Start()
		defer refresher.Stop()
	}

	// Initialize fund resolution: uploads first, then cached remote lookups
	registry := services.NewRegistryResolver()
	var resolver services.FundResolver = registry
	if avClient != nil || fundStore != nil {
		var fetcher services.FundFetcher
		if avClient != nil {
			fetcher = avClient
		}
		fundSvc := services.NewFundService(fundStore, fetcher, hub)
		resolver = services.ChainResolver{
			registry,
			services.NewCachedResolver(fundSvc, cache.NewFundCache(cfg.FundCacheTTL)),
		}
	}

	// Initialize services
	portfolioSvc := services.NewPortfolioService(hub, resolver)

	// Initialize handlers
	aggregateHandler := handlers.NewAggregateHandler(portfolioSvc)
	marketHandler := handlers.NewMarketHandler(hub)
	fundHandler := handlers.NewFundHandler(registry, resolver, hub)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Portfolio routes
	router.POST("/portfolios/aggregate", aggregateHandler.Aggregate)

	// Market routes
	router.GET("/markets/lookup", marketHandler.Lookup)
	router.GET("/markets/segments", marketHandler.Segments)

	// Fund routes
	router.POST("/funds/:ticker", fundHandler.Register)
	router.GET("/funds/:ticker", fundHandler.Get)

	// API docs
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	fmt.Println("Server exited")
}

// buildHub loads every configured exchange segment and orders them with the
// static registries. Without an AlphaVantage client segments are served from
// a fresh cache only. A segment that cannot be loaded is left out.
func buildHub(ctx context.Context, cfg *config.Config, avClient *alphavantage.Client, store market.Store) (*market.Hub, []*market.ExchangeSegment) {
	var source market.TickerSource = market.OfflineSource{}
	if avClient != nil {
		source = market.NewAlphaVantageSource(avClient)
	}

	var loaded []*market.ExchangeSegment
	segCfg := market.SegmentConfig{TTL: cfg.MarketCacheTTL, Workers: cfg.MarketWorkers}
	for _, name := range cfg.MarketSegments {
		seg := market.NewExchangeSegment(name, source, store, segCfg)
		if err := seg.Load(ctx); err != nil {
			log.Errorf("Market %s: %v", name, err)
			continue
		}
		loaded = append(loaded, seg)
	}

	exchanges := make([]market.Segment, len(loaded))
	for i, seg := range loaded {
		exchanges[i] = seg
	}
	return market.NewHub(market.Ordered(cfg.MarketOrder, market.DefaultStaticSegments(), exchanges)...), loaded
}
