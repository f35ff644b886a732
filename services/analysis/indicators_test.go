package analysis

import (
	"math"
	"testing"
	"time"
)

func TestCalculateRSI_Bounds(t *testing.T) {
	cases := [][]float64{
		{10, 11, 10.5, 12, 11.8, 12.2, 13, 12.5, 12.9, 13.4, 13.1, 13.8, 14, 13.6, 14.2},
		{50, 49, 48.5, 47, 47.8, 46.2, 45, 45.5, 44.9, 44.4, 44.1, 43.8, 43, 43.6, 42.2},
		{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10},
	}
	for i, prices := range cases {
		rsi := CalculateRSI(prices, 14)
		if rsi < 0 || rsi > 100 {
			t.Errorf("case %d: RSI %.4f outside [0,100]", i, rsi)
		}
	}
}

func TestCalculateRSI_InsufficientHistory(t *testing.T) {
	if got := CalculateRSI([]float64{10, 11, 12}, 14); got != 50 {
		t.Errorf("expected neutral 50 for short series, got %.4f", got)
	}
	if got := CalculateRSI(nil, 14); got != 50 {
		t.Errorf("expected neutral 50 for empty series, got %.4f", got)
	}
	// Exactly period points is still one short of period+1
	prices := make([]float64, 14)
	for i := range prices {
		prices[i] = float64(i + 1)
	}
	if got := CalculateRSI(prices, 14); got != 50 {
		t.Errorf("expected 50 with exactly period points, got %.4f", got)
	}
}

func TestCalculateRSI_AllGains(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 10 + float64(i)
	}
	if got := CalculateRSI(prices, 14); got != 100 {
		t.Errorf("expected 100 when no losses observed, got %.4f", got)
	}
}

func TestCalculateRSI_FixedFirstWindow(t *testing.T) {
	// Only the first 14 transitions contribute; the tail must not change
	// the result.
	base := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10}
	extended := append(append([]float64{}, base...), 500, 1, 500, 1)

	a := CalculateRSI(base, 14)
	b := CalculateRSI(extended, 14)
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("RSI window must be fixed at series start: %.6f vs %.6f", a, b)
	}
}

func TestCalculateSMA(t *testing.T) {
	if got := CalculateSMA([]float64{7.5}, 1); got != 7.5 {
		t.Errorf("single-element SMA1: got %.4f", got)
	}
	if got := CalculateSMA([]float64{1, 2, 3, 4}, 2); got != 3.5 {
		t.Errorf("SMA2 of last two: got %.4f", got)
	}
	// Shorter than period: most recent price wins
	if got := CalculateSMA([]float64{1, 2, 9}, 5); got != 9 {
		t.Errorf("short series should return last price, got %.4f", got)
	}
	if got := CalculateSMA(nil, 5); got != 0 {
		t.Errorf("empty series should return 0, got %.4f", got)
	}
}

func TestCalculateEMA(t *testing.T) {
	if got := CalculateEMA([]float64{1, 2, 9}, 5); got != 9 {
		t.Errorf("short series should return last price, got %.4f", got)
	}
	if got := CalculateEMA(nil, 5); got != 0 {
		t.Errorf("empty series should return 0, got %.4f", got)
	}
}

func TestConstantSeries_SMAandEMAAgree(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 2.00
	}

	if got := CalculateSMA(prices, 20); math.Abs(got-2.00) > 1e-12 {
		t.Errorf("SMA20 of constant 2.00 series: got %.6f", got)
	}
	if got := CalculateEMA(prices, 12); math.Abs(got-2.00) > 1e-12 {
		t.Errorf("EMA12 of constant 2.00 series: got %.6f", got)
	}
}

func TestCalculateVolumeIndicators(t *testing.T) {
	avg, ratio := CalculateVolumeIndicators(nil, 4200)
	if avg != 4200 || ratio != 1 {
		t.Errorf("empty history: got avg=%.2f ratio=%.2f", avg, ratio)
	}

	avg, ratio = CalculateVolumeIndicators([]float64{100, 200, 300}, 300)
	if math.Abs(avg-200) > 1e-12 {
		t.Errorf("expected avg 200, got %.4f", avg)
	}
	if math.Abs(ratio-1.5) > 1e-12 {
		t.Errorf("expected ratio 1.5, got %.4f", ratio)
	}

	_, ratio = CalculateVolumeIndicators([]float64{100, 200}, 0)
	if ratio != 0 {
		t.Errorf("zero current volume should give ratio 0, got %.4f", ratio)
	}
}

func TestGenerateSyntheticSeries(t *testing.T) {
	series := GenerateSyntheticSeries(10.00, 30)

	if len(series) != 31 {
		t.Fatalf("expected 31 points, got %d", len(series))
	}

	today := time.Now().Format("2006-01-02")
	if got := series[len(series)-1].Date.Format("2006-01-02"); got != today {
		t.Errorf("last point should be today, got %s", got)
	}

	for i, p := range series {
		if p.Price <= 0 {
			t.Errorf("point %d: non-positive price %.4f", i, p.Price)
		}
		if p.Volume < 10000 || p.Volume >= 110000 {
			t.Errorf("point %d: volume %d outside [10000,110000)", i, p.Volume)
		}
		if i > 0 && p.Date.Before(series[i-1].Date) {
			t.Errorf("point %d: dates not chronological", i)
		}
	}
}

func TestComputeIndicators(t *testing.T) {
	ind := ComputeIndicators(25.50, 60000)

	if ind.RSI < 0 || ind.RSI > 100 {
		t.Errorf("RSI %.4f outside [0,100]", ind.RSI)
	}
	if ind.SMA20 <= 0 {
		t.Errorf("SMA20 should be positive, got %.4f", ind.SMA20)
	}
	if ind.EMA12 <= 0 {
		t.Errorf("EMA12 should be positive, got %.4f", ind.EMA12)
	}
	if ind.VolumeAvg < 10000 || ind.VolumeAvg >= 110000 {
		t.Errorf("VolumeAvg %.2f outside synthetic volume range", ind.VolumeAvg)
	}
	if ind.VolumeRatio < 0 {
		t.Errorf("VolumeRatio should be non-negative, got %.4f", ind.VolumeRatio)
	}
}
