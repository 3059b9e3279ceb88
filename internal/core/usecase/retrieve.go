package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

// Retriever issues two independent hybrid searches against one namespace, one
// per evidence tier, and concatenates the results. Duplicates across the two
// searches are possible and left for selection to rank; no dedup here.
type Retriever struct {
	searcher ports.VectorSearcher
	topK     int
	logger   *slog.Logger
}

func NewRetriever(searcher ports.VectorSearcher, topK int, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		searcher: searcher,
		topK:     topK,
		logger:   logger,
	}
}

func (r *Retriever) Retrieve(
	ctx context.Context,
	namespace string,
	dense []float32,
	sparse domain.SparseVector,
) ([]domain.Candidate, error) {
	primary, err := r.searcher.Search(ctx, namespace, domain.TierPrimary, dense, sparse, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search primary tier: %w", err)
	}
	supplementary, err := r.searcher.Search(ctx, namespace, domain.TierSupplementary, dense, sparse, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search supplementary tier: %w", err)
	}

	out := make([]domain.Candidate, 0, len(primary)+len(supplementary))
	out = append(out, primary...)
	out = append(out, supplementary...)

	r.logger.Debug("evidence_retrieved",
		"namespace", namespace,
		"primary", len(primary),
		"supplementary", len(supplementary),
	)
	return out, nil
}
