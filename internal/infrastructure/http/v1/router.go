package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/yemzchef-ui/superchefs/internal/infrastructure/http/v1/handlers"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/http/v1/middleware"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

// ReportService is the report surface served over HTTP. *reports.Service
// implements it.
type ReportService interface {
	handlers.ReportService
	handlers.StockService
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Reports computes every report and stock view
	Reports ReportService

	// Cache is the report cache; a disabled cache is fine
	Cache interface {
		handlers.Pinger
		handlers.CacheBumper
	}

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	AppName string
	Version string

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	var cachePing handlers.Pinger
	if cfg.Cache != nil {
		cachePing = cfg.Cache
	}
	healthHandler := handlers.NewHealthHandler(cfg.DB, cachePing, cfg.AppName, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	v1 := router.Group("/api/v1")
	{
		RegisterReportRoutes(v1.Group("/reports"), handlers.NewReportsHandler(base, cfg.Reports))
		RegisterStockRoutes(v1.Group("/stock"), handlers.NewStockHandler(base, cfg.Reports))

		if cfg.Cache != nil {
			v1.POST("/cache/bump", handlers.NewCacheHandler(base, cfg.Cache).Bump)
		}
	}

	return router
}
