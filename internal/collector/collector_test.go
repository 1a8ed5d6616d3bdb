package collector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"SignalSage/internal/cache"
	"SignalSage/internal/model"
)

func TestCollector_QuoteCachedWithinTTL(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	p := &MockProvider{Price: 1.085, Volume: 100}
	c := NewCollector([]Provider{p}, nil,
		WithQuoteStore(cache.NewMemory[model.Quote](QuoteTTL, cache.WithClock(clock))),
		WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		q, err := c.Quote(ctx, "eurusd")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Symbol != "EUR/USD" {
			t.Errorf("expected EUR/USD, got %s", q.Symbol)
		}
	}
	if p.QuoteCalls() != 1 {
		t.Errorf("expected 1 upstream call, got %d", p.QuoteCalls())
	}

	now = now.Add(QuoteTTL)
	if _, err := c.Quote(ctx, "EUR/USD"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.QuoteCalls() != 2 {
		t.Errorf("expected refetch after TTL, got %d calls", p.QuoteCalls())
	}
}

func TestCollector_FallbackOrder(t *testing.T) {
	primary := &MockProvider{Source: model.SourceYahoo, QuoteErr: upstreamErr("status 503")}
	secondary := &MockProvider{Source: model.SourceAlphaVantage, Price: 190.5}
	c := NewCollector([]Provider{primary, secondary}, nil, WithLogger(zaptest.NewLogger(t)))

	q, err := c.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Source != model.SourceAlphaVantage {
		t.Errorf("expected alphavantage source, got %s", q.Source)
	}
	if primary.QuoteCalls() != 1 || secondary.QuoteCalls() != 1 {
		t.Errorf("expected one call each, got %d and %d", primary.QuoteCalls(), secondary.QuoteCalls())
	}
}

func TestCollector_ZeroPriceTreatedAsFailure(t *testing.T) {
	zero := &MockProvider{Source: model.SourceYahoo, Price: 0}
	next := &MockProvider{Source: model.SourceAlphaVantage, Price: 2.5}
	c := NewCollector([]Provider{zero, next}, nil)

	q, err := c.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 2.5 {
		t.Errorf("expected fallback price 2.5, got %f", q.Price)
	}
}

func TestCollector_AllProvidersFail(t *testing.T) {
	a := &MockProvider{Source: model.SourceYahoo, QuoteErr: upstreamErr("timeout")}
	b := &MockProvider{Source: model.SourceAlphaVantage, QuoteErr: upstreamErr("rate limited")}
	c := NewCollector([]Provider{a, b}, nil)

	_, err := c.Quote(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrSymbolNotRecognized) {
		t.Fatalf("expected ErrSymbolNotRecognized, got %v", err)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected wrapped ProviderError, got %v", err)
	}
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("expected upstream cause to be preserved, got %v", err)
	}
}

func TestCollector_CryptoUsesOnlyCryptoProvider(t *testing.T) {
	chain := &MockProvider{Source: model.SourceYahoo, Price: 1}
	crypto := &MockProvider{Source: model.SourceCoinGecko, QuoteErr: upstreamErr("status 429")}
	c := NewCollector([]Provider{chain}, crypto)

	_, err := c.Quote(context.Background(), "BTC")
	if !errors.Is(err, ErrSymbolNotRecognized) {
		t.Fatalf("expected ErrSymbolNotRecognized, got %v", err)
	}
	if chain.QuoteCalls() != 0 {
		t.Errorf("crypto symbol must not fall back to chain, got %d calls", chain.QuoteCalls())
	}
	if crypto.QuoteCalls() != 1 {
		t.Errorf("expected 1 crypto call, got %d", crypto.QuoteCalls())
	}
}

func TestCollector_HistoryCached(t *testing.T) {
	p := &MockProvider{Price: 100}
	c := NewCollector([]Provider{p}, nil)
	ctx := context.Background()

	h, err := c.History(ctx, "AAPL", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Bars) != 30 {
		t.Fatalf("expected 30 bars, got %d", len(h.Bars))
	}
	if h.Estimated {
		t.Error("fetched history must not be estimated")
	}
	if _, err := c.History(ctx, "aapl", 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HistoryCalls() != 1 {
		t.Errorf("expected 1 upstream history call, got %d", p.HistoryCalls())
	}
}

func TestCollector_HistorySyntheticFallback(t *testing.T) {
	p := &MockProvider{Price: 1.2, HistoryErr: upstreamErr("status 500")}
	c := NewCollector([]Provider{p}, nil, WithRandom(func() float64 { return 0.75 }))
	ctx := context.Background()

	h, err := c.History(ctx, "EUR/USD", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Estimated || h.Source != model.SourceSynthetic {
		t.Fatalf("expected estimated synthetic history, got estimated=%v source=%s", h.Estimated, h.Source)
	}
	if len(h.Bars) != 20 {
		t.Fatalf("expected 20 bars, got %d", len(h.Bars))
	}
	if last := h.Bars[len(h.Bars)-1].Close; last != 1.2 {
		t.Errorf("expected last close to equal quote price, got %f", last)
	}
	for i := 1; i < len(h.Bars); i++ {
		if !h.Bars[i].Time.After(h.Bars[i-1].Time) {
			t.Fatalf("bars not ascending at %d", i)
		}
		if h.Bars[i].Open != h.Bars[i-1].Close {
			t.Fatalf("bar %d open %f does not continue previous close %f", i, h.Bars[i].Open, h.Bars[i-1].Close)
		}
	}

	// Estimated series are not cached.
	if _, err := c.History(ctx, "EUR/USD", 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HistoryCalls() != 2 {
		t.Errorf("expected upstream retried, got %d calls", p.HistoryCalls())
	}
}

func TestCollector_HistoryUnknownSymbol(t *testing.T) {
	p := &MockProvider{QuoteErr: upstreamErr("404"), HistoryErr: upstreamErr("404")}
	c := NewCollector([]Provider{p}, nil)

	h, err := c.History(context.Background(), "NOPE", 30)
	if !errors.Is(err, ErrSymbolNotRecognized) {
		t.Fatalf("expected ErrSymbolNotRecognized, got %v", err)
	}
	if h == nil || len(h.Bars) != 0 {
		t.Errorf("expected empty history, got %+v", h)
	}
}

func TestCollector_EmptySymbol(t *testing.T) {
	c := NewCollector(nil, nil)
	if _, err := c.Quote(context.Background(), "  "); !errors.Is(err, ErrSymbolNotRecognized) {
		t.Errorf("expected ErrSymbolNotRecognized, got %v", err)
	}
}

type gatedProvider struct {
	calls   atomic.Int64
	release chan struct{}
}

func (g *gatedProvider) Name() model.Source { return model.SourceMock }

func (g *gatedProvider) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	g.calls.Add(1)
	<-g.release
	return &model.Quote{Symbol: symbol, Price: 42}, nil
}

func (g *gatedProvider) History(context.Context, string, int) ([]model.OHLCV, error) {
	return nil, upstreamErr("not implemented")
}

func TestCollector_ConcurrentQuotesShareFetch(t *testing.T) {
	g := &gatedProvider{release: make(chan struct{})}
	c := NewCollector([]Provider{g}, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := c.Quote(context.Background(), "MSFT")
			if err == nil && q.Price != 42 {
				err = errors.New("unexpected price")
			}
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(g.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if n := g.calls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestClampDays(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultHistoryDays},
		{-5, DefaultHistoryDays},
		{15, 15},
		{90, 90},
		{365, MaxHistoryDays},
	}
	for _, tt := range tests {
		if got := ClampDays(tt.in); got != tt.want {
			t.Errorf("ClampDays(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
