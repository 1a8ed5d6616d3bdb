package recorder

import (
	"context"
	"strings"
	"time"

	"SignalSage/internal/model"
)

// Query limits for RecentSignals.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SignalRecord is one persisted signal.
type SignalRecord struct {
	ID         int64        `json:"id"`
	Pair       string       `json:"pair"`
	Signal     model.Action `json:"signal"`
	Confidence int          `json:"confidence"`
	Price      float64      `json:"price"`
	RSI        float64      `json:"rsi"`
	Estimated  bool         `json:"estimated"`
	Source     model.Source `json:"source"`
	Reasoning  string       `json:"reasoning"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// ChatEvent records one answered chat query.
type ChatEvent struct {
	Query     string
	Symbol    string // empty when no symbol was detected
	Language  model.Language
	Matches   int
	HasSignal bool
	Fallback  bool // the pipeline failed and the fallback text was sent
}

// Recorder persists signal and chat history for analysis.
type Recorder interface {
	RecordSignal(ctx context.Context, sig *model.Signal) error
	RecordChat(ctx context.Context, evt *ChatEvent) error
	RecentSignals(ctx context.Context, pair string, limit int) ([]SignalRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// NormalizeLimit bounds a caller-supplied row limit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// rsiOf returns the first RSI reading of sig, or 0.
func rsiOf(sig *model.Signal) float64 {
	for _, r := range sig.Indicators {
		if strings.HasPrefix(r.Name, "RSI") {
			return r.Value
		}
	}
	return 0
}
