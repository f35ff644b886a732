package services

import (
	"fmt"
	"log"
	"strings"

	"stock-alert-backend/models"
	"stock-alert-backend/services/cache"
)

// DividendService serves dividend yields from the upstream feed, cached at
// a long TTL because the feed updates at most daily.
type DividendService struct {
	market *MarketService
}

// Global dividend service
var GlobalDividendService *DividendService

// InitDividendService initializes the global dividend service
func InitDividendService(market *MarketService) error {
	GlobalDividendService = &DividendService{market: market}
	log.Println("Dividend service initialized")
	return nil
}

type dividendFeed struct {
	Success bool `json:"success"`
	Data    struct {
		Timestamp string                 `json:"timestamp"`
		Count     int                    `json:"count"`
		Stocks    []models.DividendYield `json:"stocks"`
	} `json:"data"`
}

// GetDividendYields returns the current yield table for all covered stocks
func (s *DividendService) GetDividendYields() ([]models.DividendYield, error) {
	v, err := s.market.cache.Fetch("dividends:all", cache.TTLDividends, func() (interface{}, error) {
		var feed dividendFeed
		if err := s.market.fetchJSON("/dividends", &feed); err != nil {
			return nil, fmt.Errorf("dividend feed unavailable: %w", err)
		}
		if !feed.Success {
			return nil, fmt.Errorf("dividend feed reported failure")
		}
		return feed.Data.Stocks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.DividendYield), nil
}

// GetCurrentYield returns the dividend yield for one symbol, or an error
// if the feed does not cover it
func (s *DividendService) GetCurrentYield(symbol string) (float64, error) {
	yields, err := s.GetDividendYields()
	if err != nil {
		return 0, err
	}

	symbol = strings.ToUpper(symbol)
	for _, y := range yields {
		if strings.ToUpper(y.Symbol) == symbol {
			return y.DividendYield, nil
		}
	}
	return 0, fmt.Errorf("no dividend data for %s", symbol)
}

// RefreshYields drops the cached yield table so the next read refetches
func (s *DividendService) RefreshYields() {
	s.market.cache.Delete("dividends:all")
	log.Println("Dividend yield cache invalidated")
}
