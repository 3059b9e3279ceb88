package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

type askTool struct {
	ask    ports.QueryService
	logger *slog.Logger
}

func newAskTool(ask ports.QueryService, logger *slog.Logger) *askTool {
	return &askTool{ask: ask, logger: logger}
}

func (t *askTool) Definition() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription(
			"Answer a question from the indexed documentation. "+
				"Returns the answer text, the model that produced it, and the resolved citations.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question to answer. Must be a full question, not a keyword list."),
		),
	)
}

func (t *askTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := t.ask.Run(ctx, query)
	if err != nil {
		if domain.IsKind(err, domain.ErrNoMatchingTopic) {
			return mcp.NewToolResultError("the question does not match any configured topic"), nil
		}
		t.logger.Error("ask_tool_failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("answer question: %v", err)), nil
	}

	payload, err := json.Marshal(answer)
	if err != nil {
		return nil, fmt.Errorf("encode answer: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
