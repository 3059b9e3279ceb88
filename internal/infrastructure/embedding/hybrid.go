// Package embedding pairs a remote dense embedding provider with a local
// hashed BM25 sparse encoder. Both halves of the pair are produced from the
// same text, so search can blend semantic and keyword similarity.
package embedding

import (
	"context"
	"fmt"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

// DenseClient returns one dense vector per input text, in input order.
type DenseClient interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type Hybrid struct {
	dense DenseClient
}

func NewHybrid(dense DenseClient) *Hybrid {
	return &Hybrid{dense: dense}
}

func (h *Hybrid) EmbedQuery(ctx context.Context, text string) ([]float32, domain.SparseVector, error) {
	vectors, err := h.dense.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, domain.SparseVector{}, fmt.Errorf("dense query embedding: %w", err)
	}
	if len(vectors) != 1 {
		return nil, domain.SparseVector{}, fmt.Errorf("expected one query vector, got %d", len(vectors))
	}
	return vectors[0], encodeSparseQuery(text), nil
}

func (h *Hybrid) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, []domain.SparseVector, error) {
	if len(texts) == 0 {
		return nil, nil, nil
	}

	dense, err := h.dense.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("dense chunk embeddings: %w", err)
	}
	if len(dense) != len(texts) {
		return nil, nil, fmt.Errorf("expected %d chunk vectors, got %d", len(texts), len(dense))
	}

	sparse := make([]domain.SparseVector, len(texts))
	for i, text := range texts {
		sparse[i] = encodeSparseChunk(text)
	}
	return dense, sparse, nil
}
