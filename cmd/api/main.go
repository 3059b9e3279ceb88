package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/docs-qa-agent/internal/adapters/http"
	"github.com/kirillkom/docs-qa-agent/internal/bootstrap"
	"github.com/kirillkom/docs-qa-agent/internal/config"
	"github.com/kirillkom/docs-qa-agent/internal/core/usecase"
	"github.com/kirillkom/docs-qa-agent/internal/observability/logging"
	"github.com/kirillkom/docs-qa-agent/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverMetrics := metrics.NewHTTPServerMetrics("api")

	app, err := bootstrap.New(ctx, cfg, logger,
		bootstrap.WithQueryObserver(func(stats usecase.QueryStats) {
			serverMetrics.RecordQuery("api", metrics.QueryObservation{
				Topic:          stats.Topic,
				Documents:      stats.Documents,
				EvidenceTokens: stats.EvidenceTokens,
				BudgetExceeded: stats.BudgetExceeded,
				Citations:      stats.Citations,
				Duration:       stats.Duration,
			})
		}),
	)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		app.AskUC,
		app.IngestUC,
		app.Repo,
		serverMetrics,
		logger,
		cfg.MinQueryLength,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
