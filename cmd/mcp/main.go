package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/docs-qa-agent/internal/adapters/mcpserver"
	"github.com/kirillkom/docs-qa-agent/internal/bootstrap"
	"github.com/kirillkom/docs-qa-agent/internal/config"
	"github.com/kirillkom/docs-qa-agent/internal/observability/logging"
)

func main() {
	cfg := config.Load()

	// stdout carries the MCP stream, so logs go to stderr only.
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	server := mcpserver.New(app.AskUC, logger)
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
