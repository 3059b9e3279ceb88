package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

// ProcessDocumentUseCase turns an uploaded source document into indexed
// evidence: extract text, chunk, embed dense+sparse, upsert into the
// document's namespace with its tier stamped on every chunk.
type ProcessDocumentUseCase struct {
	repo          ports.DocumentRepository
	extractor     ports.TextExtractor
	chunker       ports.Chunker
	embedder      ports.Embedder
	indexer       ports.VectorIndexer
	chunkObserver func(int)
}

type ProcessOption func(*ProcessDocumentUseCase)

// WithChunkObserver reports the chunk count of every successfully indexed
// document.
func WithChunkObserver(fn func(chunks int)) ProcessOption {
	return func(uc *ProcessDocumentUseCase) {
		uc.chunkObserver = fn
	}
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	indexer ports.VectorIndexer,
	opts ...ProcessOption,
) *ProcessDocumentUseCase {
	uc := &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		indexer:   indexer,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.index(ctx, documentID); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) index(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	dense, sparse, err := uc.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(dense) != len(chunks) || len(sparse) != len(chunks) {
		return domain.WrapError(domain.ErrInvalidInput, "embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d/%d", len(dense), len(sparse), len(chunks)))
	}

	if err := uc.indexer.IndexChunks(ctx, doc, chunks, dense, sparse); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	if uc.chunkObserver != nil {
		uc.chunkObserver(len(chunks))
	}
	return nil
}
