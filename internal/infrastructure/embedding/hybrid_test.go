package embedding

import (
	"context"
	"errors"
	"testing"
)

type denseFake struct {
	err error
}

func (f *denseFake) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

func TestEmbedQueryReturnsBothHalves(t *testing.T) {
	h := NewHybrid(&denseFake{})
	dense, sparse, err := h.EmbedQuery(context.Background(), "hybrid retrieval")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(dense) != 1 {
		t.Fatalf("expected one dense vector, got %v", dense)
	}
	if len(sparse.Indices) != 2 {
		t.Fatalf("expected two sparse terms, got %+v", sparse)
	}
}

func TestEmbedDocumentsPairsVectors(t *testing.T) {
	h := NewHybrid(&denseFake{})
	dense, sparse, err := h.EmbedDocuments(context.Background(), []string{"first chunk", "second chunk"})
	if err != nil {
		t.Fatalf("EmbedDocuments() error = %v", err)
	}
	if len(dense) != 2 || len(sparse) != 2 {
		t.Fatalf("expected two vector pairs, got %d dense and %d sparse", len(dense), len(sparse))
	}
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	h := NewHybrid(&denseFake{})
	dense, sparse, err := h.EmbedDocuments(context.Background(), nil)
	if err != nil || dense != nil || sparse != nil {
		t.Fatalf("empty input must be a no-op, got %v %v %v", dense, sparse, err)
	}
}

func TestEmbedQueryPropagatesProviderError(t *testing.T) {
	h := NewHybrid(&denseFake{err: errors.New("provider down")})
	_, _, err := h.EmbedQuery(context.Background(), "q")
	if err == nil {
		t.Fatalf("expected error")
	}
}
