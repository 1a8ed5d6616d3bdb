package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// DefaultRSIPeriod is the lookback used when callers pass a non-positive period.
	DefaultRSIPeriod = 14

	// NeutralRSI is returned whenever the data cannot support a reading.
	NeutralRSI = 50.0
)

// ComputeRSI computes RSI from the simple average gain and loss of the first
// `period` deltas of closes. The result is in [0,100], rounded to 2 decimals.
//
// Fewer than period+1 closes, any non-finite close, or sums that overflow
// yield NeutralRSI.
// With no losses in the window the result is 100, unless the window is
// completely flat, which yields NeutralRSI.
func ComputeRSI(closes []float64, period int) float64 {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if len(closes) < period+1 {
		return NeutralRSI
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		if !isFinite(closes[i]) || !isFinite(closes[i-1]) {
			return NeutralRSI
		}
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	if !isFinite(avgGain) || !isFinite(avgLoss) {
		return NeutralRSI
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return NeutralRSI
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	if !isFinite(rsi) {
		return NeutralRSI
	}
	return clamp(Round2(rsi), 0, 100)
}

// TrailingWindow returns the last n values of series, or all of it when shorter.
func TrailingWindow(series []float64, n int) []float64 {
	if n <= 0 || len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	if !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
