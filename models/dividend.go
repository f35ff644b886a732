package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dividend statuses
const (
	DividendStatusAnnounced = "announced"
	DividendStatusPaid      = "paid"
	DividendStatusCancelled = "cancelled"
)

// DividendAnnouncement represents a declared dividend for a stock
type DividendAnnouncement struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	StockSymbol  string          `gorm:"index;not null" json:"stock_symbol"`
	StockName    string          `json:"stock_name"`
	DividendType string          `gorm:"type:varchar(20)" json:"dividend_type"` // cash, stock
	Amount       decimal.Decimal `gorm:"type:decimal(15,4)" json:"amount"`
	Currency     string          `gorm:"type:varchar(10);default:'GHS'" json:"currency"`
	ExDate       time.Time       `json:"ex_date"`
	PaymentDate  time.Time       `json:"payment_date"`
	Status       string          `gorm:"type:varchar(20);default:'announced'" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DividendYield is a point-in-time yield snapshot from the upstream feed
type DividendYield struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	DividendYield float64 `json:"dividend_yield"`
	Price         float64 `json:"price"`
	Sector        string  `json:"sector"`
	Exchange      string  `json:"exchange"`
}

// MigrateDividendModels runs database migrations for dividend models
func MigrateDividendModels(db *gorm.DB) error {
	return db.AutoMigrate(&DividendAnnouncement{})
}
