package model

import "time"

// Source identifies the upstream that produced a piece of market data.
type Source string

const (
	SourceYahoo        Source = "yahoo"
	SourceAlphaVantage Source = "alphavantage"
	SourceCoinGecko    Source = "coingecko"
	SourceSynthetic    Source = "synthetic"
	SourceMock         Source = "mock"
)

// Quote is a point-in-time price for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        uint64    `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
	Source        Source    `json:"source"`
}

// Available reports whether the quote carries a usable price.
func (q *Quote) Available() bool {
	return q != nil && q.Price > 0
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume uint64    `json:"volume"`
}

// History is an ascending bar series for a symbol.
// Estimated is set when the bars were synthesized rather than fetched.
type History struct {
	Symbol    string  `json:"symbol"`
	Bars      []OHLCV `json:"bars"`
	Source    Source  `json:"source"`
	Estimated bool    `json:"estimated"`
}

// Closes extracts the closing prices in bar order.
func (h *History) Closes() []float64 {
	if h == nil {
		return nil
	}
	closes := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		closes[i] = b.Close
	}
	return closes
}
