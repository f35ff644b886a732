package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-alert-backend/models"
	"stock-alert-backend/services"
)

// IPOController serves IPO announcements
type IPOController struct {
	ipos *services.IPOService
}

// NewIPOController creates a new IPO controller
func NewIPOController(ipos *services.IPOService) *IPOController {
	return &IPOController{ipos: ipos}
}

// GetIPOs lists every recorded IPO
// GET /api/v1/ipos
func (ic *IPOController) GetIPOs(c *gin.Context) {
	ipos, err := ic.ipos.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch IPOs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ipos, "count": len(ipos)})
}

// GetUpcomingIPOs lists announced IPOs that have not listed yet
// GET /api/v1/ipos/upcoming
func (ic *IPOController) GetUpcomingIPOs(c *gin.Context) {
	ipos, err := ic.ipos.GetUpcoming()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch upcoming IPOs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ipos, "count": len(ipos)})
}

// CreateIPO records an IPO announcement and fires ipo_alert
// subscriptions (admin)
// POST /api/v1/admin/ipos
func (ic *IPOController) CreateIPO(c *gin.Context) {
	var req models.CreateIPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ipo, err := ic.ipos.CreateAnnouncement(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": ipo})
}

// CheckIPOListings forces an immediate listing-date check (admin)
// POST /api/v1/admin/ipos/check
func (ic *IPOController) CheckIPOListings(c *gin.Context) {
	listed, err := ic.ipos.CheckListings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listed": listed})
}
