package model

import "time"

// Action is the recommended direction of a signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// IndicatorReading is one computed indicator and the direction it points to.
type IndicatorReading struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Signal Action  `json:"signal"`
}

// Signal is the final output of the signal pipeline, shared by the
// dashboard endpoints and the chat tool-call layer.
type Signal struct {
	Pair           string             `json:"pair"`
	Signal         Action             `json:"signal"`
	Confidence     int                `json:"confidence"`
	Price          float64            `json:"price"`
	Reasoning      string             `json:"reasoning"`
	Indicators     []IndicatorReading `json:"indicators"`
	HistoricalData []OHLCV            `json:"historicalData"`
	Estimated      bool               `json:"estimated"`
	Source         Source             `json:"source"`
	GeneratedAt    time.Time          `json:"generatedAt"`
}

// Indicator returns the reading with the given name, if present.
func (s *Signal) Indicator(name string) (IndicatorReading, bool) {
	for _, r := range s.Indicators {
		if r.Name == name {
			return r, true
		}
	}
	return IndicatorReading{}, false
}
