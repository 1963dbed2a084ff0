package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
	"github.com/yemzchef-ui/superchefs/internal/domain/reports"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/http/v1/dto"
)

// StockService is the part of reports.Service used by StockHandler.
type StockService interface {
	CurrentStock(ctx context.Context, kind ledger.EntityKind, branchID *id.ID) (*reports.CurrentStock, error)
	CheckUsage(ctx context.Context, materialID, branchID id.ID, requested types.Quantity) (*reports.UsageCheck, error)
}

// StockHandler handles current stock queries.
type StockHandler struct {
	*BaseHandler
	service StockService
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service StockService) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetCurrent handles GET /stock/current
func (h *StockHandler) GetCurrent(c *gin.Context) {
	var req dto.CurrentStockRequest
	if !h.BindQuery(c, &req) {
		return
	}
	kind, branchID, err := req.Parse()
	if err != nil {
		h.Error(c, err)
		return
	}

	stock, err := h.service.CurrentStock(c.Request.Context(), kind, branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stock)
}

// CheckUsage handles POST /stock/usage-check
func (h *StockHandler) CheckUsage(c *gin.Context) {
	var req dto.UsageCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}
	materialID, branchID, err := req.Parse()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.CheckUsage(c.Request.Context(), materialID, branchID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
