package sage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"SignalSage/internal/calculator"
	"SignalSage/internal/collector"
	"SignalSage/internal/knowledge"
	"SignalSage/internal/model"
	"SignalSage/internal/recorder"
	"SignalSage/internal/responder"
	"SignalSage/internal/strategy"
)

// History depth bounds for a signal request.
const (
	DefaultDepth = 30
	MinDepth     = calculator.DefaultRSIPeriod + 1
	MaxDepth     = collector.MaxHistoryDays
)

// EstimatedPrefix is prepended to the reasoning of signals built on
// synthetic history.
const EstimatedPrefix = "Estimated data: "

// MarketData is the subset of the collector the pipeline needs.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (*model.Quote, error)
	History(ctx context.Context, symbol string, days int) (*model.History, error)
}

// Reply is a chat answer plus the context it was built from.
type Reply struct {
	Response string                 `json:"response"`
	Signal   *model.Signal          `json:"signal,omitempty"`
	Matches  []model.KnowledgeMatch `json:"matches"`
}

// Sage runs the signal and chat pipelines.
type Sage struct {
	market    MarketData
	retriever knowledge.Retriever
	recorder  recorder.Recorder
	log       *zap.Logger
	topK      int
	now       func() time.Time
}

// Option configures a Sage.
type Option func(*Sage)

// WithRecorder persists every generated signal and chat query.
func WithRecorder(r recorder.Recorder) Option {
	return func(s *Sage) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sage) { s.log = l }
}

// WithTopK sets how many knowledge matches a chat reply uses.
func WithTopK(k int) Option {
	return func(s *Sage) { s.topK = k }
}

// WithClock sets the time source for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Sage) { s.now = now }
}

// New creates a Sage.
func New(market MarketData, retriever knowledge.Retriever, opts ...Option) *Sage {
	s := &Sage{
		market:    market,
		retriever: retriever,
		recorder:  recorder.NewNoopRecorder(),
		log:       zap.NewNop(),
		topK:      knowledge.DefaultTopK,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClampDepth maps depth into [MinDepth, MaxDepth]; 0 selects DefaultDepth.
func ClampDepth(depth int) int {
	switch {
	case depth <= 0:
		return DefaultDepth
	case depth < MinDepth:
		return MinDepth
	case depth > MaxDepth:
		return MaxDepth
	}
	return depth
}

// Signal fetches market data for pair and synthesizes a signal. Only a
// missing quote is an error; history problems degrade to estimated or
// neutral readings.
func (s *Sage) Signal(ctx context.Context, pair string, depth int) (*model.Signal, error) {
	sym := collector.NormalizeSymbol(pair)
	depth = ClampDepth(depth)

	quote, err := s.market.Quote(ctx, sym)
	if err != nil {
		return nil, fmt.Errorf("signal %s: %w", sym, err)
	}

	hist, err := s.market.History(ctx, sym, depth)
	if err != nil || hist == nil {
		s.log.Warn("history unavailable, using neutral indicators", zap.String("symbol", sym), zap.Error(err))
		hist = &model.History{Symbol: sym}
	}

	closes := hist.Closes()
	indicators := []model.IndicatorReading{calculator.RSIReading(closes, calculator.DefaultRSIPeriod)}
	if trend, err := calculator.TrendReading(closes, calculator.DefaultSMAPeriod); err == nil {
		indicators = append(indicators, trend)
	}

	decision := strategy.Synthesize(indicators, quote)
	reasoning := decision.Reasoning
	if hist.Estimated {
		reasoning = EstimatedPrefix + reasoning
	}

	sig := &model.Signal{
		Pair:           sym,
		Signal:         decision.Signal,
		Confidence:     decision.Confidence,
		Price:          quote.Price,
		Reasoning:      reasoning,
		Indicators:     indicators,
		HistoricalData: hist.Bars,
		Estimated:      hist.Estimated,
		Source:         quote.Source,
		GeneratedAt:    s.now().UTC(),
	}
	if err := s.recorder.RecordSignal(ctx, sig); err != nil {
		s.log.Warn("record signal failed", zap.String("symbol", sym), zap.Error(err))
	}
	return sig, nil
}

// Search queries the knowledge base.
func (s *Sage) Search(ctx context.Context, query string, topK int) []model.KnowledgeMatch {
	return s.retriever.Search(ctx, query, topK)
}

// Respond answers a free-text query. The result is never empty and always
// carries the disclaimer.
func (s *Sage) Respond(ctx context.Context, query string, profile model.UserProfile) string {
	return s.Chat(ctx, query, profile).Response
}

// Chat answers a free-text query and returns the signal and matches used.
// A panic anywhere in the pipeline yields the fallback response.
func (s *Sage) Chat(ctx context.Context, query string, profile model.UserProfile) (reply Reply) {
	evt := &recorder.ChatEvent{Query: query, Language: profile.PreferredLanguage}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("chat pipeline panic", zap.Any("panic", r), zap.String("query", query))
			reply = Reply{Response: responder.Fallback(profile)}
			evt.Fallback = true
		}
		if err := s.recorder.RecordChat(ctx, evt); err != nil {
			s.log.Warn("record chat failed", zap.Error(err))
		}
	}()

	if sym, ok := collector.DetectSymbol(query); ok {
		evt.Symbol = sym
		sig, err := s.Signal(ctx, sym, DefaultDepth)
		if err != nil {
			s.log.Warn("chat signal unavailable", zap.String("symbol", sym), zap.Error(err))
		} else {
			reply.Signal = sig
		}
	}
	reply.Matches = s.retriever.Search(ctx, query, s.topK)
	reply.Response = responder.Assemble(query, reply.Matches, reply.Signal, profile)

	evt.Matches = len(reply.Matches)
	evt.HasSignal = reply.Signal != nil
	return reply
}
