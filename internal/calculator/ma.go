package calculator

import (
	"errors"

	"github.com/markcheno/go-talib"

	"SignalSage/internal/model"
)

// DefaultSMAPeriod is the window of the trend reading attached to signals.
const DefaultSMAPeriod = 20

// ComputeSMA returns the latest simple moving average of closes over period.
func ComputeSMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	for _, c := range closes {
		if !isFinite(c) {
			return 0, errors.New("non-finite close in SMA window")
		}
	}
	sma := talib.Sma(closes, period)
	last := sma[len(sma)-1]
	if !isFinite(last) {
		return 0, errors.New("SMA overflowed")
	}
	return Round2(last), nil
}

// TrendReading compares the last close with its SMA: above points to BUY,
// below to SELL.
func TrendReading(closes []float64, period int) (model.IndicatorReading, error) {
	sma, err := ComputeSMA(closes, period)
	if err != nil {
		return model.IndicatorReading{}, err
	}
	last := closes[len(closes)-1]
	action := model.ActionHold
	switch {
	case last > sma:
		action = model.ActionBuy
	case last < sma:
		action = model.ActionSell
	}
	return model.IndicatorReading{Name: SMAName(period), Value: sma, Signal: action}, nil
}

// RSIReading wraps ComputeRSI into an indicator reading. The reading's own
// direction uses the plain 30/70 bands.
func RSIReading(closes []float64, period int) model.IndicatorReading {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	window := TrailingWindow(closes, period+1)
	rsi := ComputeRSI(window, period)
	action := model.ActionHold
	switch {
	case rsi > 70:
		action = model.ActionSell
	case rsi < 30:
		action = model.ActionBuy
	}
	return model.IndicatorReading{Name: RSIName(period), Value: rsi, Signal: action}
}
