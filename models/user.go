package models

import (
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents a registered account
type User struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `gorm:"not null" json:"-"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`
	IsAdmin       bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Preferences *UserPreferences `gorm:"foreignKey:UserID" json:"preferences,omitempty"`
}

// UserPreferences holds per-user notification settings
type UserPreferences struct {
	ID                    string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID                string    `gorm:"uniqueIndex;type:varchar(36);not null" json:"user_id"`
	EmailNotifications    bool      `gorm:"default:true" json:"email_notifications"`
	PushNotifications     bool      `gorm:"default:false" json:"push_notifications"`
	NotificationFrequency string    `gorm:"type:varchar(20);default:'immediate'" json:"notification_frequency"` // immediate, daily, weekly
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// SetPassword hashes and stores the password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a password against the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// MigrateUserModels runs database migrations for user-related models
func MigrateUserModels(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &UserPreferences{})
}

// SeedDefaultAdminUser creates the default admin account if no admin exists.
// Password comes from ADMIN_PASSWORD (default "admin123" for development).
func SeedDefaultAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("Warning: using default admin password, set ADMIN_PASSWORD in production")
	}

	admin := &User{
		ID:            uuid.New().String(),
		Email:         "admin@localhost",
		Name:          "Administrator",
		EmailVerified: true,
		IsAdmin:       true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	prefs := &UserPreferences{
		ID:     uuid.New().String(),
		UserID: admin.ID,
	}
	if err := db.Create(prefs).Error; err != nil {
		return err
	}

	log.Println("Seeded default admin user: admin@localhost")
	return nil
}
