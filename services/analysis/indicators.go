package analysis

import (
	"math/rand"
	"time"
)

// Default periods used by the dashboard indicator bundle
const (
	DefaultRSIPeriod   = 14
	DefaultSMAPeriod   = 20
	DefaultEMAPeriod   = 12
	DefaultHistoryDays = 30
)

// PricePoint represents one day of price/volume history
type PricePoint struct {
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Volume int64     `json:"volume"`
}

// TechnicalIndicators holds the indicator bundle computed for display
type TechnicalIndicators struct {
	RSI         float64 `json:"rsi"`
	SMA20       float64 `json:"sma20"`
	EMA12       float64 `json:"ema12"`
	VolumeAvg   float64 `json:"volume_avg"`
	VolumeRatio float64 `json:"volume_ratio"`
}

// CalculateRSI computes a single-window RSI over the first `period` price
// transitions. With fewer than period+1 prices it returns the neutral 50.
// Zero average loss returns 100. This is intentionally not a rolling
// Wilder RSI: the window is fixed at the start of the series so repeated
// calls on the same data stay comparable across the dashboard.
func CalculateRSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	gains := 0.0
	losses := 0.0
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// CalculateSMA computes the simple moving average of the last `period`
// prices. A series shorter than the period yields the most recent price,
// or 0 for an empty series.
func CalculateSMA(prices []float64, period int) float64 {
	if len(prices) < period {
		if len(prices) == 0 {
			return 0
		}
		return prices[len(prices)-1]
	}

	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// CalculateEMA computes an exponential moving average seeded with the
// simple average of the first `period` prices, then smoothed forward over
// the remainder with multiplier 2/(period+1). A series shorter than the
// period yields the most recent price, or 0 for an empty series.
//
// The seed uses the first `period` points while CalculateSMA averages the
// last `period` points; the asymmetry is kept for output compatibility.
func CalculateEMA(prices []float64, period int) float64 {
	if len(prices) < period {
		if len(prices) == 0 {
			return 0
		}
		return prices[len(prices)-1]
	}

	multiplier := 2.0 / float64(period+1)

	ema := 0.0
	for _, p := range prices[:period] {
		ema += p
	}
	ema /= float64(period)

	for _, p := range prices[period:] {
		ema = p*multiplier + ema*(1-multiplier)
	}
	return ema
}

// CalculateVolumeIndicators returns the average of the historical volumes
// and the ratio of the current volume to that average. An empty history
// maps to (currentVolume, 1) so callers never divide by a missing average.
// A zero average with non-empty history is not guarded: the ratio comes
// back Inf or NaN and callers showing real zero-volume data must handle it.
func CalculateVolumeIndicators(volumes []float64, currentVolume float64) (volumeAvg, volumeRatio float64) {
	if len(volumes) == 0 {
		return currentVolume, 1
	}

	sum := 0.0
	for _, v := range volumes {
		sum += v
	}
	volumeAvg = sum / float64(len(volumes))
	volumeRatio = currentVolume / volumeAvg
	return volumeAvg, volumeRatio
}

// GenerateSyntheticSeries builds days+1 chronological daily price points
// ending today, random-walked backward from currentPrice with at most
// ±2.5% movement per step and a 0.01 price floor. Volumes are drawn
// uniformly from [10000, 110000). The output is non-deterministic; callers
// that need stable indicators across renders must generate once per cycle.
// Stands in for a historical feed until a real provider is wired up.
func GenerateSyntheticSeries(currentPrice float64, days int) []PricePoint {
	data := make([]PricePoint, 0, days+1)
	price := currentPrice
	now := time.Now()

	for i := days; i >= 0; i-- {
		change := (rand.Float64() - 0.5) * 0.05 * price
		price = price + change
		if price < 0.01 {
			price = 0.01
		}

		data = append(data, PricePoint{
			Date:   now.AddDate(0, 0, -i),
			Price:  price,
			Volume: rand.Int63n(100000) + 10000,
		})
	}

	return data
}

// ComputeIndicators derives the display bundle for a quote from one
// synthetic history. Generates exactly one series per call.
func ComputeIndicators(currentPrice, currentVolume float64) TechnicalIndicators {
	series := GenerateSyntheticSeries(currentPrice, DefaultHistoryDays)

	prices := make([]float64, len(series))
	volumes := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
		volumes[i] = float64(p.Volume)
	}

	volumeAvg, volumeRatio := CalculateVolumeIndicators(volumes, currentVolume)

	return TechnicalIndicators{
		RSI:         CalculateRSI(prices, DefaultRSIPeriod),
		SMA20:       CalculateSMA(prices, DefaultSMAPeriod),
		EMA12:       CalculateEMA(prices, DefaultEMAPeriod),
		VolumeAvg:   volumeAvg,
		VolumeRatio: volumeRatio,
	}
}
