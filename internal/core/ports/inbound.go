package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

// QueryService is the inbound contract for the question-answering pipeline.
type QueryService interface {
	Run(ctx context.Context, query string) (*domain.Answer, error)
}

// UploadRequest carries the operator-supplied metadata for a source document.
type UploadRequest struct {
	Filename  string
	MimeType  string
	Namespace string
	Tier      domain.Tier
	Title     string
	SourceURL string
}

// DocumentIngestor is the inbound contract for source-document upload.
type DocumentIngestor interface {
	Upload(ctx context.Context, req UploadRequest, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
