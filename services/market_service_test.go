package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"stock-alert-backend/models"
	"stock-alert-backend/services/cache"
)

func newTestMarketService(t *testing.T, handler http.Handler) *MarketService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMarketService(srv.URL, cache.New())
}

func TestGetAllStocksParsesLiveFeed(t *testing.T) {
	svc := newTestMarketService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/live" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"gcb","price":5.40,"change":0.05,"volume":125000}]`))
	}))

	stocks, err := svc.GetAllStocks()
	if err != nil {
		t.Fatalf("GetAllStocks failed: %v", err)
	}
	if len(stocks) != 1 {
		t.Fatalf("expected 1 stock, got %d", len(stocks))
	}

	s := stocks[0]
	if s.Symbol != "GCB" {
		t.Errorf("expected symbol GCB, got %s", s.Symbol)
	}
	if s.CurrentPrice != 5.40 {
		t.Errorf("expected price 5.40, got %v", s.CurrentPrice)
	}
	if s.PreviousClose != 5.35 {
		t.Errorf("expected previous close 5.35, got %v", s.PreviousClose)
	}
}

func TestGetAllStocksCachesResponse(t *testing.T) {
	calls := 0
	svc := newTestMarketService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[{"name":"gcb","price":5.40,"change":0.05,"volume":125000}]`))
	}))

	for i := 0; i < 3; i++ {
		if _, err := svc.GetAllStocks(); err != nil {
			t.Fatalf("GetAllStocks failed: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 upstream call within the TTL window, got %d", calls)
	}
}

func TestGetAllStocksFallsBackToMocks(t *testing.T) {
	svc := newTestMarketService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	stocks, err := svc.GetAllStocks()
	if err != nil {
		t.Fatalf("expected mock fallback, got error: %v", err)
	}
	if len(stocks) == 0 {
		t.Fatal("expected mock quotes when the upstream is down")
	}
}

func TestGetStockUppercasesSymbol(t *testing.T) {
	svc := newTestMarketService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/live/MTNGH" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"name":"mtngh","price":1.43,"change":-0.02,"volume":890000}`))
	}))

	stock, err := svc.GetStock("mtngh")
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if stock.Symbol != "MTNGH" {
		t.Errorf("expected symbol MTNGH, got %s", stock.Symbol)
	}
}

func TestSearchStocksFiltersBySubstring(t *testing.T) {
	svc := newTestMarketService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name":"gcb","price":5.40,"change":0.05,"volume":125000},
			{"name":"mtngh","price":1.43,"change":-0.02,"volume":890000}
		]`))
	}))

	matches, err := svc.SearchStocks("mtn")
	if err != nil {
		t.Fatalf("SearchStocks failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Symbol != "MTNGH" {
		t.Errorf("expected only MTNGH, got %+v", matches)
	}
}

func TestEnhanceStockChangePercent(t *testing.T) {
	stock := enhanceStock(models.StockLive{Name: "gcb", Price: 5.40, Change: 0.05, Volume: 125000})

	if stock.PreviousClose != 5.35 {
		t.Errorf("expected previous close 5.35, got %v", stock.PreviousClose)
	}
	want := (0.05 / 5.35) * 100
	if diff := stock.ChangePercent - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected change percent %.6f, got %.6f", want, stock.ChangePercent)
	}
}
