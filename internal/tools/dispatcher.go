package tools

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"SignalSage/internal/collector"
	"SignalSage/internal/knowledge"
	"SignalSage/internal/model"
)

// Tool names exposed to chat clients.
const (
	GetMarketDataAndSignal = "get_market_data_and_signal"
	SearchKnowledge        = "search_knowledge"
)

// ErrorResult codes.
const (
	CodeInvalidArguments    = "invalid_arguments"
	CodeSymbolNotRecognized = "symbol_not_recognized"
	CodeUnknownTool         = "unknown_tool"
	CodeInternal            = "internal_error"
)

// Service is what the tool layer calls into.
type Service interface {
	Signal(ctx context.Context, pair string, depth int) (*model.Signal, error)
	Search(ctx context.Context, query string, topK int) []model.KnowledgeMatch
}

// Dispatcher maps tool invocations onto the pipeline and always returns one
// of the model.ToolResult variants.
type Dispatcher struct {
	svc Service
	log *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(svc Service, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{svc: svc, log: log}
}

// Call invokes a tool by name with loosely typed arguments.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) model.ToolResult {
	switch name {
	case GetMarketDataAndSignal:
		pair, _ := args["pair"].(string)
		return d.MarketSignal(ctx, pair, intArg(args, "depth"))
	case SearchKnowledge:
		query, _ := args["query"].(string)
		return d.Knowledge(ctx, query, intArg(args, "top_k"))
	default:
		return model.ErrorResult{Code: CodeUnknownTool, Message: "unknown tool: " + name}
	}
}

// MarketSignal runs get_market_data_and_signal.
func (d *Dispatcher) MarketSignal(ctx context.Context, pair string, depth int) model.ToolResult {
	if strings.TrimSpace(pair) == "" {
		return model.ErrorResult{Code: CodeInvalidArguments, Message: "pair is required"}
	}
	sig, err := d.svc.Signal(ctx, pair, depth)
	switch {
	case errors.Is(err, collector.ErrSymbolNotRecognized):
		return model.ErrorResult{Code: CodeSymbolNotRecognized, Message: err.Error()}
	case err != nil:
		d.log.Error("tool call failed", zap.String("tool", GetMarketDataAndSignal), zap.Error(err))
		return model.ErrorResult{Code: CodeInternal, Message: "failed to build signal"}
	}
	return model.MarketSignalResult{Signal: sig}
}

// Knowledge runs search_knowledge.
func (d *Dispatcher) Knowledge(ctx context.Context, query string, topK int) model.ToolResult {
	if strings.TrimSpace(query) == "" {
		return model.ErrorResult{Code: CodeInvalidArguments, Message: "query is required"}
	}
	if topK <= 0 {
		topK = knowledge.DefaultTopK
	}
	matches := d.svc.Search(ctx, query, topK)
	if matches == nil {
		matches = []model.KnowledgeMatch{}
	}
	return model.KnowledgeResult{Query: query, Matches: matches}
}

// intArg accepts JSON numbers (float64) and ints.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
