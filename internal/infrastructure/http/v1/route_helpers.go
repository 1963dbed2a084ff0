// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// ReportRouteHandler defines the report endpoints.
type ReportRouteHandler interface {
	GetStockSummary(c *gin.Context)
	GetMetrics(c *gin.Context)
	GetBranchPerformance(c *gin.Context)
	GetProductPerformance(c *gin.Context)
}

// StockRouteHandler defines the current stock endpoints.
type StockRouteHandler interface {
	GetCurrent(c *gin.Context)
	CheckUsage(c *gin.Context)
}

// RegisterReportRoutes registers the read-only report routes.
//
// Usage:
//
//	handler := handlers.NewReportsHandler(baseHandler, reportService)
//	RegisterReportRoutes(v1.Group("/reports"), handler)
func RegisterReportRoutes(group *gin.RouterGroup, handler ReportRouteHandler) {
	group.GET("/stock-summary", handler.GetStockSummary)
	group.GET("/metrics", handler.GetMetrics)
	group.GET("/branch-performance", handler.GetBranchPerformance)
	group.GET("/product-performance", handler.GetProductPerformance)
}

// RegisterStockRoutes registers current stock and usage check routes.
func RegisterStockRoutes(group *gin.RouterGroup, handler StockRouteHandler) {
	group.GET("/current", handler.GetCurrent)
	group.POST("/usage-check", handler.CheckUsage)
}
