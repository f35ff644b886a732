package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"stock-alert-backend/middleware"
	"stock-alert-backend/models"
	"stock-alert-backend/services"
)

// WatchlistController manages per-user stock watchlists
type WatchlistController struct {
	db     *gorm.DB
	market *services.MarketService
}

// NewWatchlistController creates a new watchlist controller
func NewWatchlistController(db *gorm.DB, market *services.MarketService) *WatchlistController {
	return &WatchlistController{db: db, market: market}
}

// GetWatchlist returns the user's watchlist with live quotes attached
// GET /api/v1/watchlist
func (wc *WatchlistController) GetWatchlist(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var entries []models.WatchlistEntry
	if err := wc.db.Where("user_id = ?", userID).Order("created_at").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch watchlist"})
		return
	}

	type watchedStock struct {
		models.WatchlistEntry
		Quote *models.EnhancedStock `json:"quote,omitempty"`
	}

	result := make([]watchedStock, 0, len(entries))
	for _, entry := range entries {
		ws := watchedStock{WatchlistEntry: entry}
		if quote, err := wc.market.GetStock(entry.StockSymbol); err == nil {
			ws.Quote = quote
		}
		result = append(result, ws)
	}

	c.JSON(http.StatusOK, gin.H{"data": result, "count": len(result)})
}

// AddToWatchlist adds a symbol to the user's watchlist
// POST /api/v1/watchlist
func (wc *WatchlistController) AddToWatchlist(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		StockSymbol string `json:"stock_symbol" binding:"required"`
		StockName   string `json:"stock_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.StockSymbol))

	// Resolve name from the quote when the client didn't send one
	name := req.StockName
	if name == "" {
		if quote, err := wc.market.GetStock(symbol); err == nil {
			name = quote.Name
		}
	}

	entry := models.WatchlistEntry{
		UserID:      userID,
		StockSymbol: symbol,
		StockName:   name,
	}
	if err := wc.db.Create(&entry).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Stock already in watchlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": entry})
}

// RemoveFromWatchlist removes a symbol from the user's watchlist
// DELETE /api/v1/watchlist/:symbol
func (wc *WatchlistController) RemoveFromWatchlist(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))

	res := wc.db.Where("user_id = ? AND stock_symbol = ?", userID, symbol).
		Delete(&models.WatchlistEntry{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from watchlist"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not in watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from watchlist"})
}
