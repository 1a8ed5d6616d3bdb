package collector

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"SignalSage/internal/cache"
	"SignalSage/internal/model"
)

const (
	// QuoteTTL is how long a successful quote is served from cache.
	QuoteTTL = 60 * time.Second
	// HistoryTTL is how long a fetched bar series is served from cache.
	HistoryTTL = 5 * time.Minute

	// DefaultHistoryDays is the number of bars kept when callers pass 0.
	DefaultHistoryDays = 30
	// MaxHistoryDays caps any history request.
	MaxHistoryDays = 90

	// syntheticNoise bounds the per-bar move of an estimated series.
	syntheticNoise = 0.015
)

// Collector resolves quotes and history through an ordered provider chain.
// Crypto symbols go to a dedicated provider with no fallback.
type Collector struct {
	chain   []Provider
	crypto  Provider
	quotes  cache.Store[model.Quote]
	history cache.Store[model.History]
	group   singleflight.Group
	log     *zap.Logger
	random  func() float64
	now     func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithQuoteStore replaces the default in-memory quote cache.
func WithQuoteStore(s cache.Store[model.Quote]) Option {
	return func(c *Collector) { c.quotes = s }
}

// WithHistoryStore replaces the default in-memory history cache.
func WithHistoryStore(s cache.Store[model.History]) Option {
	return func(c *Collector) { c.history = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) { c.log = l }
}

// WithRandom sets the noise source for estimated history; it must return
// values in [0,1).
func WithRandom(r func() float64) Option {
	return func(c *Collector) { c.random = r }
}

// WithClock sets the time source used to stamp estimated bars.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// NewCollector creates a Collector. chain is tried in order for non-crypto
// symbols; crypto may be nil to disable crypto support.
func NewCollector(chain []Provider, crypto Provider, opts ...Option) *Collector {
	c := &Collector{
		chain:   chain,
		crypto:  crypto,
		quotes:  cache.NewMemory[model.Quote](QuoteTTL),
		history: cache.NewMemory[model.History](HistoryTTL),
		log:     zap.NewNop(),
		random:  rand.Float64,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) providersFor(symbol string) []Provider {
	if IsCrypto(symbol) {
		if c.crypto == nil {
			return nil
		}
		return []Provider{c.crypto}
	}
	return c.chain
}

// Quote returns the current quote for symbol. A cached quote is returned
// without touching the network. When no provider can price the symbol the
// error matches ErrSymbolNotRecognized.
func (c *Collector) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrSymbolNotRecognized)
	}
	if q, ok := c.quotes.Get(ctx, sym); ok {
		return &q, nil
	}

	v, err, _ := c.group.Do("quote:"+sym, func() (any, error) {
		var errs []error
		for _, p := range c.providersFor(sym) {
			q, err := p.Quote(ctx, sym)
			if err == nil && !q.Available() {
				err = upstreamErr("non-positive price")
			}
			if err != nil {
				c.log.Warn("quote provider failed",
					zap.String("provider", string(p.Name())),
					zap.String("symbol", sym),
					zap.Error(err))
				errs = append(errs, &ProviderError{Provider: p.Name(), Err: err})
				continue
			}
			q.Symbol = sym
			c.quotes.Set(ctx, sym, *q)
			return *q, nil
		}
		if len(errs) == 0 {
			return nil, fmt.Errorf("%w: %s: no provider configured", ErrSymbolNotRecognized, sym)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSymbolNotRecognized, sym, errors.Join(errs...))
	})
	if err != nil {
		return nil, err
	}
	q := v.(model.Quote)
	return &q, nil
}

// History returns up to days ascending bars for symbol. If every provider
// fails, a synthetic series is derived from the current quote and flagged
// Estimated; estimated series are never cached. If no quote is available
// either, an empty history is returned with an ErrSymbolNotRecognized error.
func (c *Collector) History(ctx context.Context, symbol string, days int) (*model.History, error) {
	sym := NormalizeSymbol(symbol)
	days = ClampDays(days)
	if sym == "" {
		return &model.History{}, fmt.Errorf("%w: empty symbol", ErrSymbolNotRecognized)
	}
	key := sym + ":" + strconv.Itoa(days)
	if h, ok := c.history.Get(ctx, key); ok {
		return &h, nil
	}

	v, err, _ := c.group.Do("history:"+key, func() (any, error) {
		for _, p := range c.providersFor(sym) {
			bars, err := p.History(ctx, sym, days)
			if err == nil && len(bars) == 0 {
				err = upstreamErr("empty history")
			}
			if err != nil {
				c.log.Warn("history provider failed",
					zap.String("provider", string(p.Name())),
					zap.String("symbol", sym),
					zap.Error(err))
				continue
			}
			h := model.History{Symbol: sym, Bars: trimBars(bars, days), Source: p.Name()}
			c.history.Set(ctx, key, h)
			return h, nil
		}

		q, err := c.Quote(ctx, sym)
		if err != nil {
			return model.History{Symbol: sym}, err
		}
		c.log.Info("using estimated history", zap.String("symbol", sym), zap.Float64("price", q.Price))
		return model.History{
			Symbol:    sym,
			Bars:      c.syntheticBars(q.Price, days),
			Source:    model.SourceSynthetic,
			Estimated: true,
		}, nil
	})
	h := v.(model.History)
	return &h, err
}

// syntheticBars walks backwards from lastPrice with bounded multiplicative
// noise so the final close equals lastPrice.
func (c *Collector) syntheticBars(lastPrice float64, n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	day := c.now().UTC().Truncate(24 * time.Hour)

	closePrice := lastPrice
	for i := n - 1; i >= 0; i-- {
		move := (c.random()*2 - 1) * syntheticNoise
		open := closePrice / (1 + move)
		wick := c.random() * syntheticNoise / 2
		hi, lo := open, closePrice
		if closePrice > open {
			hi, lo = closePrice, open
		}
		bars[i] = model.OHLCV{
			Time:  day.AddDate(0, 0, -(n - 1 - i)),
			Open:  open,
			High:  hi * (1 + wick),
			Low:   lo * (1 - wick),
			Close: closePrice,
		}
		closePrice = open
	}
	return bars
}

// ClampDays bounds a requested history length to [1, MaxHistoryDays],
// mapping non-positive values to DefaultHistoryDays.
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		return MaxHistoryDays
	}
	return days
}
