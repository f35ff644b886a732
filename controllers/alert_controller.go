package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock-alert-backend/middleware"
	"stock-alert-backend/models"
	"stock-alert-backend/services"
)

// AlertController handles alert CRUD and trigger history
type AlertController struct {
	alerts  *services.AlertService
	history *services.HistoryStore
}

// NewAlertController creates a new alert controller
func NewAlertController(alerts *services.AlertService, history *services.HistoryStore) *AlertController {
	return &AlertController{alerts: alerts, history: history}
}

// CreateAlert creates an alert for the authenticated user
// POST /api/v1/alerts
func (ac *AlertController) CreateAlert(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req models.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := ac.alerts.CreateAlert(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": alert})
}

// GetAlerts lists the authenticated user's alerts, optionally filtered
// GET /api/v1/alerts?status=active&symbol=GCB
func (ac *AlertController) GetAlerts(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	status := c.Query("status")
	symbol := c.Query("symbol")

	alerts, err := ac.alerts.GetUserAlerts(userID, status, symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alerts, "count": len(alerts)})
}

// GetAlert returns one alert owned by the authenticated user
// GET /api/v1/alerts/:id
func (ac *AlertController) GetAlert(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	alert, err := ac.alerts.GetAlert(c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alert})
}

// UpdateAlert updates an alert's thresholds or status
// PUT /api/v1/alerts/:id
func (ac *AlertController) UpdateAlert(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req models.UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := ac.alerts.UpdateAlert(c.Param("id"), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alert})
}

// DeleteAlert removes an alert
// DELETE /api/v1/alerts/:id
func (ac *AlertController) DeleteAlert(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if err := ac.alerts.DeleteAlert(c.Param("id"), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert deleted"})
}

// GetTriggerHistory returns the user's recent trigger events from the journal
// GET /api/v1/alerts/history?limit=50
func (ac *AlertController) GetTriggerHistory(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if ac.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Trigger history unavailable"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := ac.history.RecentTriggers(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trigger history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events, "count": len(events)})
}

// RunAlertCheck forces an immediate monitoring pass (admin)
// POST /api/v1/admin/alerts/check
func (ac *AlertController) RunAlertCheck(c *gin.Context) {
	triggered, err := ac.alerts.CheckAlerts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"triggered": triggered})
}
