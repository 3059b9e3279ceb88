package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

// TopicRouter picks the namespace a query should be answered from. With a
// single-entry catalog it never calls the model; otherwise it asks for a
// constrained single-token choice over the catalog positions.
type TopicRouter struct {
	catalog   domain.TopicCatalog
	composer  *Composer
	completer ports.ChatCompleter
	logger    *slog.Logger
}

func NewTopicRouter(
	catalog domain.TopicCatalog,
	composer *Composer,
	completer ports.ChatCompleter,
	logger *slog.Logger,
) *TopicRouter {
	return &TopicRouter{
		catalog:   catalog,
		composer:  composer,
		completer: completer,
		logger:    logger,
	}
}

func (r *TopicRouter) Route(ctx context.Context, query string) (string, error) {
	if len(r.catalog) == 0 {
		return "", domain.WrapError(domain.ErrConfiguration, "route topic",
			errors.New("topic catalog is empty"))
	}
	if len(r.catalog) == 1 {
		return r.catalog[0].Key, nil
	}

	turns, err := r.composer.ComposeTopicChoice(query, r.catalog)
	if err != nil {
		return "", err
	}

	choice, err := r.completer.CompleteChoice(ctx, turns, len(r.catalog))
	if err != nil {
		return "", fmt.Errorf("topic decision: %w", err)
	}
	if choice == 0 {
		return "", domain.WrapError(domain.ErrNoMatchingTopic, "route topic",
			errors.New("model declined every catalog entry"))
	}
	if choice < 0 || choice > len(r.catalog) {
		return "", domain.WrapError(domain.ErrProvider, "route topic",
			fmt.Errorf("choice %d outside catalog of %d", choice, len(r.catalog)))
	}

	topic := r.catalog[choice-1].Key
	r.logger.Debug("topic_routed", "choice", choice, "topic", topic)
	return topic, nil
}
