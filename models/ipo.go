package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IPO statuses
const (
	IPOStatusAnnounced = "announced"
	IPOStatusListed    = "listed"
	IPOStatusCancelled = "cancelled"
)

// IPOAnnouncement represents an upcoming or completed stock listing
type IPOAnnouncement struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CompanyName string          `gorm:"not null" json:"company_name"`
	Symbol      string          `gorm:"index;not null" json:"symbol"`
	Sector      string          `json:"sector"`
	OfferPrice  decimal.Decimal `gorm:"type:decimal(15,4)" json:"offer_price"`
	ListingDate time.Time       `json:"listing_date"`
	Status      string          `gorm:"index;type:varchar(20);default:'announced'" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateIPORequest is the admin payload for recording an IPO
type CreateIPORequest struct {
	CompanyName string  `json:"company_name" binding:"required"`
	Symbol      string  `json:"symbol" binding:"required"`
	Sector      string  `json:"sector"`
	OfferPrice  float64 `json:"offer_price" binding:"required,gt=0"`
	ListingDate string  `json:"listing_date" binding:"required"`
}

// MigrateIPOModels runs database migrations for IPO models
func MigrateIPOModels(db *gorm.DB) error {
	return db.AutoMigrate(&IPOAnnouncement{})
}
