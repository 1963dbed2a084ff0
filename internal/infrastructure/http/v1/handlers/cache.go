package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yemzchef-ui/superchefs/internal/infrastructure/http/v1/dto"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

// CacheBumper invalidates cached reports.
type CacheBumper interface {
	Enabled() bool
	Bump(ctx context.Context) error
	Version(ctx context.Context) (int64, error)
}

// CacheHandler exposes manual report cache invalidation.
type CacheHandler struct {
	*BaseHandler
	cache CacheBumper
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(base *BaseHandler, cache CacheBumper) *CacheHandler {
	return &CacheHandler{BaseHandler: base, cache: cache}
}

// Bump handles POST /cache/bump
func (h *CacheHandler) Bump(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.cache.Enabled() {
		h.OK(c, dto.CacheBumpResponse{})
		return
	}
	if err := h.cache.Bump(ctx); err != nil {
		h.Error(c, err)
		return
	}
	ver, err := h.cache.Version(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	logger.Info(ctx, "report cache bumped", "version", ver)
	h.OK(c, dto.CacheBumpResponse{Version: ver, Enabled: true})
}
