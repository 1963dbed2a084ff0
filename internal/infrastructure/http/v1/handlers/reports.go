package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yemzchef-ui/superchefs/internal/domain/reports"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/http/v1/dto"
)

// ReportService is the part of reports.Service used by ReportsHandler.
type ReportService interface {
	Location() *time.Location
	StockSummary(ctx context.Context, f reports.Filter) (*reports.StockSummary, error)
	AccountMetrics(ctx context.Context, f reports.Filter) (*reports.AccountMetrics, error)
	BranchPerformance(ctx context.Context, f reports.Filter) (*reports.BranchReport, error)
	ProductPerformance(ctx context.Context, f reports.Filter) (*reports.ProductReport, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service ReportService
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportService) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStockSummary handles GET /reports/stock-summary
func (h *ReportsHandler) GetStockSummary(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	report, err := h.service.StockSummary(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// GetMetrics handles GET /reports/metrics
func (h *ReportsHandler) GetMetrics(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	metrics, err := h.service.AccountMetrics(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, metrics)
}

// GetBranchPerformance handles GET /reports/branch-performance
func (h *ReportsHandler) GetBranchPerformance(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	report, err := h.service.BranchPerformance(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// GetProductPerformance handles GET /reports/product-performance
func (h *ReportsHandler) GetProductPerformance(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	report, err := h.service.ProductPerformance(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

func (h *ReportsHandler) filter(c *gin.Context) (reports.Filter, bool) {
	var req dto.ReportFilterRequest
	if !h.BindQuery(c, &req) {
		return reports.Filter{}, false
	}
	f, err := req.ToFilter(h.service.Location())
	if err != nil {
		h.Error(c, err)
		return reports.Filter{}, false
	}
	return f, true
}
