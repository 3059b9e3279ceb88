// Package mcpserver exposes the question-answering pipeline as an MCP tool
// so editor and agent clients can query the documentation index over stdio.
package mcpserver

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

const serverVersion = "1.0.0"

// New builds the MCP server with the ask tool registered.
func New(ask ports.QueryService, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"docs-qa-agent",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(
			"Answers questions about the indexed documentation corpus. "+
				"Every factual statement in an answer cites its source document.",
		),
	)

	tool := newAskTool(ask, logger)
	s.AddTool(tool.Definition(), tool.Handle)

	return s
}

// ServeStdio blocks serving MCP requests on stdin/stdout until the client
// closes the stream.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
