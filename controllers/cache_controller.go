package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-alert-backend/services"
	"stock-alert-backend/services/cache"
)

// CacheController exposes cache administration endpoints
type CacheController struct {
	cache  *cache.Cache
	market *services.MarketService
}

// NewCacheController creates a new cache controller
func NewCacheController(c *cache.Cache, market *services.MarketService) *CacheController {
	return &CacheController{cache: c, market: market}
}

// GetStats returns cache and stream status (admin)
// GET /api/v1/admin/cache
func (cc *CacheController) GetStats(c *gin.Context) {
	stats := gin.H{
		"entries": cc.cache.Len(),
		"ttls_minutes": gin.H{
			"stock_list":    cache.TTLStockList,
			"single_stock":  cache.TTLSingleStock,
			"stock_details": cache.TTLStockDetails,
			"alert_list":    cache.TTLAlertList,
			"dividends":     cache.TTLDividends,
		},
	}
	if services.GlobalStreamService != nil {
		stats["stream"] = services.GlobalStreamService.Status()
	}

	c.JSON(http.StatusOK, stats)
}

// ClearCache drops every cached entry (admin)
// POST /api/v1/admin/cache/clear
func (cc *CacheController) ClearCache(c *gin.Context) {
	before := cc.cache.Len()
	cc.cache.Clear()

	c.JSON(http.StatusOK, gin.H{
		"message": "Cache cleared",
		"dropped": before,
	})
}

// PruneCache evicts only expired entries (admin)
// POST /api/v1/admin/cache/prune
func (cc *CacheController) PruneCache(c *gin.Context) {
	pruned := cc.cache.PruneExpired()

	c.JSON(http.StatusOK, gin.H{
		"message": "Expired entries pruned",
		"pruned":  pruned,
	})
}

// InvalidateStocks drops cached market data so the next read refetches (admin)
// POST /api/v1/admin/cache/invalidate/stocks
func (cc *CacheController) InvalidateStocks(c *gin.Context) {
	cc.market.InvalidateStockCache()
	dropped := cc.cache.DeletePrefix("stock:")

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock cache invalidated",
		"dropped": dropped,
	})
}

// InvalidateAlerts drops every cached alert list across all users (admin)
// POST /api/v1/admin/cache/invalidate/alerts
func (cc *CacheController) InvalidateAlerts(c *gin.Context) {
	dropped := cc.cache.DeletePrefix("alerts:")

	c.JSON(http.StatusOK, gin.H{
		"message": "Alert list cache invalidated",
		"dropped": dropped,
	})
}
