package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-alert-backend/models"
	"stock-alert-backend/services"
)

// DividendController serves dividend yields and announcements
type DividendController struct {
	db        *gorm.DB
	dividends *services.DividendService
	alerts    *services.AlertService
}

// NewDividendController creates a new dividend controller
func NewDividendController(db *gorm.DB, dividends *services.DividendService, alerts *services.AlertService) *DividendController {
	return &DividendController{db: db, dividends: dividends, alerts: alerts}
}

// GetYields returns current dividend yields from the exchange feed
// GET /api/v1/dividends/yields
func (dc *DividendController) GetYields(c *gin.Context) {
	yields, err := dc.dividends.GetDividendYields()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Dividend feed unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": yields, "count": len(yields)})
}

// GetAnnouncements lists recorded dividend announcements, newest first
// GET /api/v1/dividends/announcements?symbol=GCB
func (dc *DividendController) GetAnnouncements(c *gin.Context) {
	query := dc.db.Order("ex_date DESC")
	if symbol := c.Query("symbol"); symbol != "" {
		query = query.Where("stock_symbol = ?", strings.ToUpper(symbol))
	}

	var announcements []models.DividendAnnouncement
	if err := query.Limit(100).Find(&announcements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch announcements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": announcements, "count": len(announcements)})
}

// CreateAnnouncementRequest is the admin payload for recording a dividend
type CreateAnnouncementRequest struct {
	StockSymbol  string  `json:"stock_symbol" binding:"required"`
	StockName    string  `json:"stock_name"`
	DividendType string  `json:"dividend_type"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Currency     string  `json:"currency"`
	ExDate       string  `json:"ex_date" binding:"required"`
	PaymentDate  string  `json:"payment_date"`
}

// CreateAnnouncement records a dividend announcement and fires any
// announcement alerts watching the symbol (admin)
// POST /api/v1/admin/dividends/announcements
func (dc *DividendController) CreateAnnouncement(c *gin.Context) {
	var req CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exDate, err := time.Parse("2006-01-02", req.ExDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ex_date must be YYYY-MM-DD"})
		return
	}
	var paymentDate time.Time
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment_date must be YYYY-MM-DD"})
			return
		}
	}

	dividendType := req.DividendType
	if dividendType == "" {
		dividendType = "cash"
	}
	currency := req.Currency
	if currency == "" {
		currency = "GHS"
	}

	announcement := models.DividendAnnouncement{
		ID:           uuid.New().String(),
		StockSymbol:  strings.ToUpper(req.StockSymbol),
		StockName:    req.StockName,
		DividendType: dividendType,
		Amount:       decimal.NewFromFloat(req.Amount),
		Currency:     currency,
		ExDate:       exDate,
		PaymentDate:  paymentDate,
		Status:       models.DividendStatusAnnounced,
	}
	if err := dc.db.Create(&announcement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record announcement"})
		return
	}

	triggered, err := dc.alerts.TriggerFeedAlerts(
		announcement.StockSymbol, models.AlertTypeDividendAnnouncement, 0)
	if err != nil {
		log.Printf("Failed to fire announcement alerts for %s: %v", announcement.StockSymbol, err)
		triggered = 0
	}

	if services.GlobalStreamService != nil {
		services.GlobalStreamService.BroadcastMessage("dividend_announcement", announcement)
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":             announcement,
		"alerts_triggered": triggered,
	})
}
