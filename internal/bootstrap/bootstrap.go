package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/docs-qa-agent/internal/config"
	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
	"github.com/kirillkom/docs-qa-agent/internal/core/usecase"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/chunking"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/embedding"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/extractor"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/llm/openaiapi"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/prompt"
	natsqueue "github.com/kirillkom/docs-qa-agent/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/resilience"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/tokens"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/vector/pinecone"
)

type options struct {
	chunkObserver    func(int)
	queueLagObserver func(time.Duration)
	queryObserver    func(usecase.QueryStats)
}

type Option func(*options)

// WithChunkObserver reports the chunk count of every indexed document, for
// worker-side metrics.
func WithChunkObserver(fn func(chunks int)) Option {
	return func(o *options) { o.chunkObserver = fn }
}

// WithQueueLagObserver reports the queue dwell time of every consumed
// document event.
func WithQueueLagObserver(fn func(lag time.Duration)) Option {
	return func(o *options) { o.queueLagObserver = fn }
}

// WithQueryObserver reports stats for every successfully answered query.
func WithQueryObserver(fn func(usecase.QueryStats)) Option {
	return func(o *options) { o.queryObserver = fn }
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	AskUC     ports.QueryService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	catalog, err := cfg.TopicCatalog()
	if err != nil {
		return nil, fmt.Errorf("parse topic catalog: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
		LagObserver:        o.queueLagObserver,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	counter, err := tokens.NewCounter(cfg.TokenEncoding)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init token counter: %w", err)
	}

	provider := openaiapi.New(openaiapi.Options{
		BaseURL:           cfg.ProviderBaseURL,
		APIKey:            cfg.ProviderAPIKey,
		ChatModel:         cfg.ChatModel,
		EmbedModel:        cfg.EmbedModel,
		RequestsPerSecond: cfg.ProviderRPS,
	}, counter, executor)

	embedder := embedding.NewHybrid(provider)
	vectorIndex := pinecone.New(cfg.VectorIndexURL, cfg.VectorIndexAPIKey)
	templates := prompt.NewStore(cfg.PromptTemplateDir)

	composer := usecase.NewComposer(templates)
	topicRouter := usecase.NewTopicRouter(catalog, composer, provider, logger)
	retriever := usecase.NewRetriever(vectorIndex, cfg.RetrievalTopK, logger)
	selector := usecase.NewSelector(counter, domain.SelectionBudget{
		MaxTokens:    cfg.MaxEvidenceTokens,
		MaxDocuments: cfg.MaxEvidenceDocuments,
	}, logger)
	resolver := usecase.NewCitationResolver(logger)

	var askOpts []usecase.AskOption
	if o.queryObserver != nil {
		askOpts = append(askOpts, usecase.WithQueryObserver(o.queryObserver))
	}
	askUC := usecase.NewAskUseCase(
		topicRouter,
		embedder,
		retriever,
		selector,
		composer,
		provider,
		resolver,
		cfg.MaxResponseTokens,
		logger,
		askOpts...,
	)

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extract := extractor.NewRegistry(storage)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, catalog)

	var processOpts []usecase.ProcessOption
	if o.chunkObserver != nil {
		processOpts = append(processOpts, usecase.WithChunkObserver(o.chunkObserver))
	}
	processUC := usecase.NewProcessDocumentUseCase(repo, extract, chunker, embedder, vectorIndex, processOpts...)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue: queue,
		Repo:  repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		AskUC:     askUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
