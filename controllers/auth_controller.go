package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"stock-alert-backend/middleware"
	"stock-alert-backend/models"
	"stock-alert-backend/services"
)

// AuthController handles registration and login
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new auth controller
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// RegisterRequest is the signup payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account
// POST /api/v1/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := ac.db.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	user := &models.User{
		ID:    uuid.New().String(),
		Email: email,
		Name:  req.Name,
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	if err := ac.db.Create(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	prefs := &models.UserPreferences{
		ID:     uuid.New().String(),
		UserID: user.ID,
	}
	if err := ac.db.Create(prefs).Error; err != nil {
		log.Printf("Failed to create preferences for user %s: %v", user.ID, err)
	}

	if services.GlobalEmailService != nil && services.GlobalEmailService.Configured() {
		go func() {
			if err := services.GlobalEmailService.SendWelcomeEmail(user); err != nil {
				log.Printf("Welcome email failed for %s: %v", user.Email, err)
			}
		}()
	}

	token, err := middleware.IssueToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login verifies credentials and issues a token
// POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ip := c.ClientIP()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := ac.db.Where("email = ?", email).First(&user).Error; err != nil {
		middleware.RecordLoginAttempt(ip, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !user.CheckPassword(req.Password) {
		middleware.RecordLoginAttempt(ip, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	middleware.RecordLoginAttempt(ip, true)

	token, err := middleware.IssueToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile with preferences
// GET /api/v1/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var user models.User
	if err := ac.db.Preload("Preferences").Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdatePreferences updates the authenticated user's notification settings
// PUT /api/v1/auth/preferences
func (ac *AuthController) UpdatePreferences(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		EmailNotifications    *bool   `json:"email_notifications"`
		PushNotifications     *bool   `json:"push_notifications"`
		NotificationFrequency *string `json:"notification_frequency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var prefs models.UserPreferences
	if err := ac.db.Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		prefs = models.UserPreferences{ID: uuid.New().String(), UserID: userID}
	}

	if req.EmailNotifications != nil {
		prefs.EmailNotifications = *req.EmailNotifications
	}
	if req.PushNotifications != nil {
		prefs.PushNotifications = *req.PushNotifications
	}
	if req.NotificationFrequency != nil {
		switch *req.NotificationFrequency {
		case "immediate", "daily", "weekly":
			prefs.NotificationFrequency = *req.NotificationFrequency
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification frequency"})
			return
		}
	}

	if err := ac.db.Save(&prefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
