package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"SignalSage/internal/model"
)

// NewMCPServer registers the chat tools on an MCP server.
func NewMCPServer(d *Dispatcher, name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	s.AddTool(createMarketSignalTool(), handleMarketSignal(d))
	s.AddTool(createSearchKnowledgeTool(), handleSearchKnowledge(d))
	return s
}

func createMarketSignalTool() mcp.Tool {
	return mcp.NewTool(GetMarketDataAndSignal,
		mcp.WithDescription("Fetch the latest quote and daily history for a trading pair and return a BUY/SELL/HOLD signal with confidence, reasoning and indicators."),
		mcp.WithString("pair", mcp.Required(), mcp.Description("Symbol or pair, e.g. 'EUR/USD', 'BTC', 'AAPL', 'BBCA.JK'")),
		mcp.WithNumber("depth", mcp.Description("Days of history to analyze (default: 30, min: 15, max: 90)")),
	)
}

func createSearchKnowledgeTool() mcp.Tool {
	return mcp.NewTool(SearchKnowledge,
		mcp.WithDescription("Search the trading education knowledge base and return the best matching entries."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text question or keywords")),
		mcp.WithNumber("top_k", mcp.Description("Maximum entries to return (default: 3)")),
	)
}

func handleMarketSignal(d *Dispatcher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toCallResult(d.MarketSignal(ctx, request.GetString("pair", ""), request.GetInt("depth", 0))), nil
	}
}

func handleSearchKnowledge(d *Dispatcher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toCallResult(d.Knowledge(ctx, request.GetString("query", ""), request.GetInt("top_k", 0))), nil
	}
}

// toCallResult encodes r as a single JSON text content block. ErrorResult
// sets IsError.
func toCallResult(r model.ToolResult) *mcp.CallToolResult {
	data, err := model.MarshalToolResult(r)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent("failed to encode result: " + err.Error())},
			IsError: true,
		}
	}
	_, isErr := r.(model.ErrorResult)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: isErr,
	}
}
