package strategy

import (
	"fmt"
	"math"
	"strings"

	"SignalSage/internal/model"
)

// Fixed RSI bands.
const (
	overbought   = 70.0
	oversold     = 30.0
	bullishFloor = 60.0
	bearishCeil  = 40.0

	baseConfidence     = 50.0
	leaningConfidence  = 60.0
	maxConfidence      = 80.0
	confidencePerPoint = 3.0
	noVolumePenalty    = 0.9
)

// Decision is the synthesized recommendation for one symbol.
type Decision struct {
	Signal     model.Action
	Confidence int
	Reasoning  string
}

// regime describes one RSI band.
type regime struct {
	name      string
	signal    model.Action
	reasoning string
}

var (
	regimeOverbought = regime{"overbought", model.ActionSell,
		"RSI at %.2f is above 70, so the market looks overbought; momentum may be exhausting and a pullback is more likely than continuation."}
	regimeOversold = regime{"oversold", model.ActionBuy,
		"RSI at %.2f is below 30, so the market looks oversold; selling pressure may be exhausting and a rebound is more likely than continuation."}
	regimeBullish = regime{"bullish", model.ActionHold,
		"RSI at %.2f shows firm bullish momentum without being overbought; holding with a buy bias until a better entry or confirmation appears."}
	regimeBearish = regime{"bearish", model.ActionHold,
		"RSI at %.2f shows weakening momentum without being oversold; holding with a sell bias until the trend confirms."}
	regimeNeutral = regime{"neutral", model.ActionHold,
		"RSI at %.2f sits in the neutral zone; there is no clear momentum edge, so holding is the prudent call."}
)

// InsufficientData is the reasoning used when no RSI reading is available.
const InsufficientData = "insufficient data"

// classify maps an RSI value to its band.
func classify(rsi float64) regime {
	switch {
	case rsi > overbought:
		return regimeOverbought
	case rsi < oversold:
		return regimeOversold
	case rsi > bullishFloor:
		return regimeBullish
	case rsi < bearishCeil:
		return regimeBearish
	default:
		return regimeNeutral
	}
}

// confidenceFor computes the confidence before the volume penalty.
func confidenceFor(r regime, rsi float64) float64 {
	switch r {
	case regimeOverbought:
		return clip(baseConfidence + (rsi-overbought)*confidencePerPoint)
	case regimeOversold:
		return clip(baseConfidence + (oversold-rsi)*confidencePerPoint)
	case regimeBullish, regimeBearish:
		return leaningConfidence
	default:
		return baseConfidence
	}
}

func clip(v float64) float64 {
	return math.Max(0, math.Min(maxConfidence, v))
}

// findRSI returns the first reading whose name starts with "RSI".
func findRSI(indicators []model.IndicatorReading) (model.IndicatorReading, bool) {
	for _, r := range indicators {
		if strings.HasPrefix(r.Name, "RSI") {
			return r, true
		}
	}
	return model.IndicatorReading{}, false
}

// Synthesize derives signal, confidence and reasoning from the RSI reading.
// A quote without volume lowers the confidence.
func Synthesize(indicators []model.IndicatorReading, quote *model.Quote) Decision {
	reading, ok := findRSI(indicators)
	if !ok || math.IsNaN(reading.Value) {
		return Decision{Signal: model.ActionHold, Confidence: int(baseConfidence), Reasoning: InsufficientData}
	}

	rsi := reading.Value
	r := classify(rsi)
	conf := confidenceFor(r, rsi)
	if quote == nil || quote.Volume == 0 {
		conf *= noVolumePenalty
	}

	return Decision{
		Signal:     r.signal,
		Confidence: int(math.Round(conf)),
		Reasoning:  fmt.Sprintf(r.reasoning, rsi),
	}
}

// Regime returns the band name for an RSI value: overbought, oversold,
// bullish, bearish or neutral.
func Regime(rsi float64) string {
	return classify(rsi).name
}
