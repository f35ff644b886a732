package models

import (
	"time"

	"gorm.io/gorm"
)

// WatchlistEntry links a user to a stock they follow
type WatchlistEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index:idx_user_symbol,unique;type:varchar(36);not null" json:"user_id"`
	StockSymbol string    `gorm:"index:idx_user_symbol,unique;not null" json:"stock_symbol"`
	StockName   string    `json:"stock_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// MigrateWatchlistModels runs database migrations for watchlist models
func MigrateWatchlistModels(db *gorm.DB) error {
	return db.AutoMigrate(&WatchlistEntry{})
}
