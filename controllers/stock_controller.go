package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stock-alert-backend/services"
	"stock-alert-backend/services/analysis"
)

// StockController serves market data and derived indicators
type StockController struct {
	market *services.MarketService
}

// NewStockController creates a new stock controller
func NewStockController(market *services.MarketService) *StockController {
	return &StockController{market: market}
}

// GetStocks returns live quotes for all listed stocks
// GET /api/v1/stocks
func (sc *StockController) GetStocks(c *gin.Context) {
	if query := c.Query("search"); query != "" {
		stocks, err := sc.market.SearchStocks(query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search stocks"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stocks, "count": len(stocks)})
		return
	}

	stocks, err := sc.market.GetAllStocks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stocks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stocks, "count": len(stocks)})
}

// GetStock returns the live quote for one symbol
// GET /api/v1/stocks/:symbol
func (sc *StockController) GetStock(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	stock, err := sc.market.GetStock(symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stock})
}

// GetStockDetails returns quote plus company fundamentals
// GET /api/v1/stocks/:symbol/details
func (sc *StockController) GetStockDetails(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	details, err := sc.market.GetStockDetails(symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock details not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": details})
}

// GetStockIndicators returns technical indicators for one symbol
// GET /api/v1/stocks/:symbol/indicators
func (sc *StockController) GetStockIndicators(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	stock, err := sc.market.GetStock(symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}

	indicators := analysis.ComputeIndicators(stock.CurrentPrice, float64(stock.Volume))

	c.JSON(http.StatusOK, gin.H{
		"symbol":     stock.Symbol,
		"price":      stock.CurrentPrice,
		"indicators": indicators,
	})
}

// GetStockHistory returns a price series ending at the current quote
// GET /api/v1/stocks/:symbol/history?days=30
func (sc *StockController) GetStockHistory(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(analysis.DefaultHistoryDays)))
	if err != nil || days < 1 || days > 365 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
		return
	}

	stock, err := sc.market.GetStock(symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}

	series := analysis.GenerateSyntheticSeries(stock.CurrentPrice, days)

	c.JSON(http.StatusOK, gin.H{
		"symbol": stock.Symbol,
		"days":   days,
		"data":   series,
	})
}
