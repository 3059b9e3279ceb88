package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

// Embedder builds the dense/sparse vector pair for query text and the vectors
// for document chunks. The sparse side is fit per-call on the input text
// alone, not on a trained corpus.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, domain.SparseVector, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, []domain.SparseVector, error)
}

// VectorSearcher issues one namespaced, tier-filtered hybrid similarity
// search. Results carry score and metadata only, never raw vectors.
type VectorSearcher interface {
	Search(ctx context.Context, namespace string, tier domain.Tier, dense []float32, sparse domain.SparseVector, topK int) ([]domain.Candidate, error)
}

// VectorIndexer writes document chunks into a namespace partition.
type VectorIndexer interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []string, dense [][]float32, sparse []domain.SparseVector) error
}

// ChatCompleter invokes the language model. CompleteChoice constrains output
// to the integer literals 0..numOptions via a token bias map and returns the
// chosen integer; 0 is reserved for "none of the options apply".
type ChatCompleter interface {
	Complete(ctx context.Context, turns []domain.PromptTurn, maxTokens int) (string, error)
	CompleteChoice(ctx context.Context, turns []domain.PromptTurn, numOptions int) (int, error)
	Model() string
}

// TokenCounter counts tokens under the configured model encoding.
type TokenCounter interface {
	Count(text string) int
}

// TemplateStore loads a role-turn prompt template by name. Every template
// must contain exactly one user-role turn.
type TemplateStore interface {
	Load(name string) ([]domain.PromptTurn, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type MessageQueue interface {
	PublishDocumentQueued(ctx context.Context, documentID string) error
	SubscribeDocumentQueued(ctx context.Context, handler func(context.Context, string) error) error
}

type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

type Chunker interface {
	Split(text string) []string
}
