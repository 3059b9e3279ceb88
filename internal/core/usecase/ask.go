package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

// QueryStats describes one answered query, for callers that export metrics.
type QueryStats struct {
	Topic          string
	Documents      int
	EvidenceTokens int
	BudgetExceeded bool
	Citations      int
	Duration       time.Duration
}

// AskUseCase runs one query through the full pipeline: route, embed,
// retrieve, select, compose, complete, resolve. Each stage's output is the
// next stage's only input; any stage error fails the whole query. There is no
// partial success: the caller gets a complete Answer or an error.
type AskUseCase struct {
	router            *TopicRouter
	embedder          ports.Embedder
	retriever         *Retriever
	selector          *Selector
	composer          *Composer
	completer         ports.ChatCompleter
	resolver          *CitationResolver
	maxResponseTokens int
	logger            *slog.Logger
	statsObserver     func(QueryStats)
}

type AskOption func(*AskUseCase)

// WithQueryObserver reports stats for every successfully answered query.
func WithQueryObserver(fn func(QueryStats)) AskOption {
	return func(uc *AskUseCase) {
		uc.statsObserver = fn
	}
}

func NewAskUseCase(
	router *TopicRouter,
	embedder ports.Embedder,
	retriever *Retriever,
	selector *Selector,
	composer *Composer,
	completer ports.ChatCompleter,
	resolver *CitationResolver,
	maxResponseTokens int,
	logger *slog.Logger,
	opts ...AskOption,
) *AskUseCase {
	if maxResponseTokens <= 0 {
		maxResponseTokens = 300
	}
	uc := &AskUseCase{
		router:            router,
		embedder:          embedder,
		retriever:         retriever,
		selector:          selector,
		composer:          composer,
		completer:         completer,
		resolver:          resolver,
		maxResponseTokens: maxResponseTokens,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run dispatches the pipeline onto its own goroutine and awaits the result,
// so slow provider calls never block the caller's dispatch loop. Cancelling
// ctx abandons the wait; the stages themselves observe the same ctx.
func (uc *AskUseCase) Run(ctx context.Context, query string) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "run query", errors.New("empty query"))
	}

	type outcome struct {
		answer *domain.Answer
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		answer, err := uc.pipeline(ctx, query)
		done <- outcome{answer: answer, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.answer, out.err
	}
}

func (uc *AskUseCase) pipeline(ctx context.Context, query string) (*domain.Answer, error) {
	start := time.Now()

	topic, err := uc.router.Route(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("route topic: %w", err)
	}

	dense, sparse, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := uc.retriever.Retrieve(ctx, topic, dense, sparse)
	if err != nil {
		return nil, fmt.Errorf("retrieve evidence: %w", err)
	}
	if len(candidates) == 0 {
		uc.logger.Debug("no_supporting_documents", "topic", topic)
	}

	selection := uc.selector.Select(candidates)

	turns, err := uc.composer.ComposeAnswer(query, selection.Candidates)
	if err != nil {
		return nil, fmt.Errorf("compose prompt: %w", err)
	}

	raw, err := uc.completer.Complete(ctx, turns, uc.maxResponseTokens)
	if err != nil {
		return nil, fmt.Errorf("complete answer: %w", err)
	}

	answer := uc.resolver.Resolve(raw, uc.completer.Model(), selection.Candidates)
	uc.logger.Info("query_answered",
		"topic", topic,
		"documents", len(selection.Candidates),
		"evidence_tokens", selection.TotalTokens,
		"budget_exceeded", selection.BudgetExceeded,
		"citations", len(answer.Citations),
	)
	if uc.statsObserver != nil {
		uc.statsObserver(QueryStats{
			Topic:          topic,
			Documents:      len(selection.Candidates),
			EvidenceTokens: selection.TotalTokens,
			BudgetExceeded: selection.BudgetExceeded,
			Citations:      len(answer.Citations),
			Duration:       time.Since(start),
		})
	}
	return answer, nil
}
