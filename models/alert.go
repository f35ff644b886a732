package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AlertType identifies what condition an alert watches
type AlertType string

const (
	AlertTypePriceThreshold       AlertType = "price_threshold"
	AlertTypeIPO                  AlertType = "ipo_alert"
	AlertTypeDividendAnnouncement AlertType = "dividend_announcement"
	AlertTypeHighDividendYield    AlertType = "high_dividend_yield"
	AlertTypeDividendYieldChange  AlertType = "dividend_yield_change"
	AlertTypeTargetDividendYield  AlertType = "target_dividend_yield"
)

// String returns the string representation of AlertType
func (a AlertType) String() string {
	return string(a)
}

// Valid reports whether the alert type is one of the known kinds
func (a AlertType) Valid() bool {
	switch a {
	case AlertTypePriceThreshold, AlertTypeIPO, AlertTypeDividendAnnouncement,
		AlertTypeHighDividendYield, AlertTypeDividendYieldChange, AlertTypeTargetDividendYield:
		return true
	}
	return false
}

// IsYieldBased reports whether the alert compares dividend yields
func (a AlertType) IsYieldBased() bool {
	switch a {
	case AlertTypeHighDividendYield, AlertTypeDividendYieldChange, AlertTypeTargetDividendYield:
		return true
	}
	return false
}

// Alert statuses
const (
	AlertStatusActive    = "active"
	AlertStatusTriggered = "triggered"
	AlertStatusPaused    = "paused"
)

// Alert represents a user-configured stock alert
type Alert struct {
	ID                   string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID               string          `gorm:"index;type:varchar(36);not null" json:"user_id"`
	StockSymbol          string          `gorm:"index;not null" json:"stock_symbol"`
	StockName            string          `json:"stock_name"`
	AlertType            AlertType       `gorm:"type:varchar(40);not null" json:"alert_type"`
	ThresholdPrice       decimal.Decimal `gorm:"type:decimal(15,4)" json:"threshold_price"`
	CurrentPrice         decimal.Decimal `gorm:"type:decimal(15,4)" json:"current_price"`
	ThresholdYield       decimal.Decimal `gorm:"type:decimal(8,4)" json:"threshold_yield"`
	CurrentYield         decimal.Decimal `gorm:"type:decimal(8,4)" json:"current_yield"`
	TargetYield          decimal.Decimal `gorm:"type:decimal(8,4)" json:"target_yield"`
	YieldChangeThreshold decimal.Decimal `gorm:"type:decimal(8,4)" json:"yield_change_threshold"`
	LastYield            decimal.Decimal `gorm:"type:decimal(8,4)" json:"last_yield"`
	Status               string          `gorm:"index;type:varchar(20);default:'active'" json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	TriggeredAt          *time.Time      `json:"triggered_at,omitempty"`
}

// CreateAlertRequest is the payload for creating an alert
type CreateAlertRequest struct {
	StockSymbol          string   `json:"stock_symbol" binding:"required"`
	StockName            string   `json:"stock_name"`
	AlertType            string   `json:"alert_type" binding:"required"`
	ThresholdPrice       *float64 `json:"threshold_price,omitempty"`
	ThresholdYield       *float64 `json:"threshold_yield,omitempty"`
	TargetYield          *float64 `json:"target_yield,omitempty"`
	YieldChangeThreshold *float64 `json:"yield_change_threshold,omitempty"`
}

// UpdateAlertRequest is the payload for updating an alert; nil fields are
// left unchanged
type UpdateAlertRequest struct {
	AlertType            *string  `json:"alert_type,omitempty"`
	ThresholdPrice       *float64 `json:"threshold_price,omitempty"`
	ThresholdYield       *float64 `json:"threshold_yield,omitempty"`
	TargetYield          *float64 `json:"target_yield,omitempty"`
	YieldChangeThreshold *float64 `json:"yield_change_threshold,omitempty"`
	Status               *string  `json:"status,omitempty"`
}

// TriggeredAlertEvent records one alert firing, for the history journal
// and the event archive
type TriggeredAlertEvent struct {
	AlertID     string    `json:"alert_id" bson:"alert_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	StockSymbol string    `json:"stock_symbol" bson:"stock_symbol"`
	AlertType   string    `json:"alert_type" bson:"alert_type"`
	Price       float64   `json:"price" bson:"price"`
	Yield       float64   `json:"yield" bson:"yield"`
	TriggeredAt time.Time `json:"triggered_at" bson:"triggered_at"`
}

// MigrateAlertModels runs database migrations for alert-related models
func MigrateAlertModels(db *gorm.DB) error {
	return db.AutoMigrate(&Alert{})
}
