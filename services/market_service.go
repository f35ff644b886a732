package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"stock-alert-backend/models"
	"stock-alert-backend/services/cache"
)

// MarketService reads quotes and company details from the exchange API,
// memoizing every response through the shared cache so rate-limited
// endpoints are hit at most once per TTL window.
type MarketService struct {
	baseURL    string
	cache      *cache.Cache
	httpClient *http.Client
}

// Global market service
var GlobalMarketService *MarketService

// NewMarketService creates a market service backed by the given cache
func NewMarketService(baseURL string, c *cache.Cache) *MarketService {
	return &MarketService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cache:      c,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// InitMarketService initializes the global market service
func InitMarketService(baseURL string, c *cache.Cache) error {
	GlobalMarketService = NewMarketService(baseURL, c)
	log.Println("Market service initialized")
	return nil
}

// Cache returns the response cache backing this service
func (s *MarketService) Cache() *cache.Cache {
	return s.cache
}

// GetAllStocks returns live quotes for every listed stock
func (s *MarketService) GetAllStocks() ([]models.EnhancedStock, error) {
	if v, ok := s.cache.Get("stocks:all"); ok {
		log.Println("Cache hit for stock list")
		return v.([]models.EnhancedStock), nil
	}

	var live []models.StockLive
	if err := s.fetchJSON("/live", &live); err != nil {
		log.Printf("Exchange API unavailable, serving mock quotes: %v", err)
		mock := mockStocks()
		// Cache mock data for a shorter window so real data recovers fast
		s.cache.Set("stocks:all", mock, 1)
		return mock, nil
	}

	stocks := make([]models.EnhancedStock, len(live))
	for i, l := range live {
		stocks[i] = enhanceStock(l)
	}
	s.cache.Set("stocks:all", stocks, cache.TTLStockList)
	return stocks, nil
}

// GetStock returns the live quote for one symbol
func (s *MarketService) GetStock(symbol string) (*models.EnhancedStock, error) {
	symbol = strings.ToUpper(symbol)
	key := fmt.Sprintf("stock:live:%s", symbol)

	if v, ok := s.cache.Get(key); ok {
		log.Printf("Cache hit for stock %s", symbol)
		return v.(*models.EnhancedStock), nil
	}

	var live models.StockLive
	if err := s.fetchJSON("/live/"+symbol, &live); err != nil {
		for _, m := range mockStocks() {
			if m.Symbol == symbol {
				s.cache.Set(key, &m, 1)
				return &m, nil
			}
		}
		return nil, fmt.Errorf("stock %s not found", symbol)
	}
	if live.Name == "" {
		live.Name = symbol
	}
	stock := enhanceStock(live)
	stock.Symbol = symbol
	s.cache.Set(key, &stock, cache.TTLSingleStock)
	return &stock, nil
}

// GetStockDetails returns the quote plus company fundamentals
func (s *MarketService) GetStockDetails(symbol string) (*models.DetailedStock, error) {
	symbol = strings.ToUpper(symbol)
	key := fmt.Sprintf("stock:details:%s", symbol)

	v, err := s.cache.Fetch(key, cache.TTLStockDetails, func() (interface{}, error) {
		var equity models.StockEquity
		if err := s.fetchJSON("/equities/"+symbol, &equity); err != nil {
			return nil, fmt.Errorf("details for %s unavailable: %w", symbol, err)
		}

		quote, err := s.GetStock(symbol)
		if err != nil {
			quote = &models.EnhancedStock{
				Symbol:       symbol,
				Name:         equity.Company.Name,
				CurrentPrice: equity.Price,
				LastUpdated:  time.Now(),
			}
		}

		return &models.DetailedStock{
			EnhancedStock: *quote,
			MarketCap:     equity.Capital,
			Shares:        equity.Shares,
			DPS:           equity.DPS,
			EPS:           equity.EPS,
			Company:       equity.Company,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DetailedStock), nil
}

// SearchStocks filters the cached stock list by symbol or name substring
func (s *MarketService) SearchStocks(query string) ([]models.EnhancedStock, error) {
	stocks, err := s.GetAllStocks()
	if err != nil {
		return nil, err
	}

	query = strings.ToUpper(query)
	matches := make([]models.EnhancedStock, 0)
	for _, stock := range stocks {
		if strings.Contains(strings.ToUpper(stock.Symbol), query) ||
			strings.Contains(strings.ToUpper(stock.Name), query) {
			matches = append(matches, stock)
		}
	}
	return matches, nil
}

// InvalidateStockCache drops all cached stock data so the next read
// refetches from the exchange
func (s *MarketService) InvalidateStockCache() {
	s.cache.Delete("stocks:all")
	log.Println("Stock list cache invalidated")
}

func (s *MarketService) fetchJSON(path string, dest interface{}) error {
	req, err := http.NewRequest(http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("exchange API status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// enhanceStock converts the upstream live payload into the served shape.
// The upstream "name" field carries the ticker symbol.
func enhanceStock(l models.StockLive) models.EnhancedStock {
	previousClose := l.Price - l.Change
	changePercent := 0.0
	if previousClose != 0 {
		changePercent = (l.Change / previousClose) * 100
	}

	return models.EnhancedStock{
		Symbol:        strings.ToUpper(l.Name),
		Name:          l.Name,
		CurrentPrice:  l.Price,
		PreviousClose: previousClose,
		Change:        l.Change,
		ChangePercent: changePercent,
		Volume:        l.Volume,
		LastUpdated:   time.Now(),
	}
}

// mockStocks returns deterministic fallback quotes for when the exchange
// API is unreachable
func mockStocks() []models.EnhancedStock {
	now := time.Now()
	return []models.EnhancedStock{
		{Symbol: "GCB", Name: "GCB Bank", CurrentPrice: 5.40, PreviousClose: 5.35, Change: 0.05, ChangePercent: 0.93, Volume: 125000, LastUpdated: now},
		{Symbol: "MTNGH", Name: "MTN Ghana", CurrentPrice: 1.43, PreviousClose: 1.45, Change: -0.02, ChangePercent: -1.38, Volume: 890000, LastUpdated: now},
		{Symbol: "EGH", Name: "Ecobank Ghana", CurrentPrice: 7.10, PreviousClose: 7.10, Change: 0, ChangePercent: 0, Volume: 34000, LastUpdated: now},
		{Symbol: "TOTAL", Name: "TotalEnergies Ghana", CurrentPrice: 9.80, PreviousClose: 9.60, Change: 0.20, ChangePercent: 2.08, Volume: 12000, LastUpdated: now},
		{Symbol: "SCB", Name: "Standard Chartered Bank Ghana", CurrentPrice: 21.50, PreviousClose: 21.70, Change: -0.20, ChangePercent: -0.92, Volume: 5600, LastUpdated: now},
	}
}
