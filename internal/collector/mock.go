package collector

import (
	"context"
	"sync/atomic"
	"time"

	"SignalSage/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Source     model.Source
	Price      float64
	Volume     uint64
	Bars       []model.OHLCV
	QuoteErr   error
	HistoryErr error

	quoteCalls   atomic.Int64
	historyCalls atomic.Int64
}

func (m *MockProvider) Name() model.Source {
	if m.Source == "" {
		return model.SourceMock
	}
	return m.Source
}

func (m *MockProvider) Quote(_ context.Context, symbol string) (*model.Quote, error) {
	m.quoteCalls.Add(1)
	if m.QuoteErr != nil {
		return nil, m.QuoteErr
	}
	return &model.Quote{
		Symbol:    symbol,
		Price:     m.Price,
		Volume:    m.Volume,
		Timestamp: time.Now().UTC(),
		Source:    m.Name(),
	}, nil
}

func (m *MockProvider) History(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	m.historyCalls.Add(1)
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	if m.Bars != nil {
		return trimBars(m.Bars, days), nil
	}
	return BarsFromCloses(generateCloses(m.Price, days), time.Now()), nil
}

// QuoteCalls reports how many times Quote was invoked.
func (m *MockProvider) QuoteCalls() int { return int(m.quoteCalls.Load()) }

// HistoryCalls reports how many times History was invoked.
func (m *MockProvider) HistoryCalls() int { return int(m.historyCalls.Load()) }

func generateCloses(basePrice float64, count int) []float64 {
	closes := make([]float64, count)
	for i := range closes {
		closes[i] = basePrice * (1 + float64(i-count/2)*0.001)
	}
	return closes
}

// BarsFromCloses builds daily bars ending at end from a close series.
func BarsFromCloses(closes []float64, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(len(closes) - 1 - i)),
			Open:   open,
			High:   max(open, c) * 1.002,
			Low:    min(open, c) * 0.998,
			Close:  c,
			Volume: 1000000,
		}
	}
	return bars
}
