package models

import "time"

// StockLive mirrors the upstream exchange live-price payload
type StockLive struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
	Volume int64   `json:"volume"`
}

// Company mirrors the upstream company profile payload
type Company struct {
	Address   string   `json:"address"`
	Directors []string `json:"directors"`
	Email     string   `json:"email"`
	Industry  string   `json:"industry"`
	Name      string   `json:"name"`
	Sector    string   `json:"sector"`
	Telephone string   `json:"telephone"`
	Website   string   `json:"website"`
}

// StockEquity mirrors the upstream equity detail payload
type StockEquity struct {
	Capital float64  `json:"capital"`
	Company Company  `json:"company"`
	DPS     *float64 `json:"dps"`
	EPS     *float64 `json:"eps"`
	Name    string   `json:"name"`
	Price   float64  `json:"price"`
	Shares  int64    `json:"shares"`
}

// EnhancedStock is the quote shape served to clients
type EnhancedStock struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	CurrentPrice  float64   `json:"current_price"`
	PreviousClose float64   `json:"previous_close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	LastUpdated   time.Time `json:"last_updated"`
	Sector        string    `json:"sector,omitempty"`
	Industry      string    `json:"industry,omitempty"`
}

// DetailedStock extends the quote with company fundamentals
type DetailedStock struct {
	EnhancedStock
	MarketCap float64  `json:"market_cap"`
	Shares    int64    `json:"shares"`
	DPS       *float64 `json:"dps"`
	EPS       *float64 `json:"eps"`
	Company   Company  `json:"company"`
}
