package model

import "encoding/json"

// ToolResult is the closed set of results a chat tool call can produce.
// Callers switch on the concrete type.
type ToolResult interface {
	ToolResultType() string
}

// MarketSignalResult is returned by get_market_data_and_signal.
type MarketSignalResult struct {
	Signal *Signal `json:"signal"`
}

// KnowledgeResult is returned by search_knowledge.
type KnowledgeResult struct {
	Query   string           `json:"query"`
	Matches []KnowledgeMatch `json:"matches"`
}

// ErrorResult reports a failed tool call.
type ErrorResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (MarketSignalResult) ToolResultType() string { return "market_signal" }
func (KnowledgeResult) ToolResultType() string    { return "knowledge" }
func (ErrorResult) ToolResultType() string        { return "error" }

// MarshalToolResult encodes a result as {"type": ..., "data": ...}.
func MarshalToolResult(r ToolResult) ([]byte, error) {
	return json.Marshal(struct {
		Type string     `json:"type"`
		Data ToolResult `json:"data"`
	}{Type: r.ToolResultType(), Data: r})
}
