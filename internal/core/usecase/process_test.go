package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type processRepoFake struct {
	doc           *domain.Document
	getErr        error
	failStatusErr error
	statusCalls   []statusCall
}

func (f *processRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *processRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *processRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if status == domain.StatusFailed && f.failStatusErr != nil {
		return f.failStatusErr
	}
	return nil
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type chunkerFake struct {
	chunks []string
}

func (f *chunkerFake) Split(string) []string { return f.chunks }

type docEmbedderFake struct {
	dense  [][]float32
	sparse []domain.SparseVector
	err    error
}

func (f *docEmbedderFake) EmbedDocuments(context.Context, []string) ([][]float32, []domain.SparseVector, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.dense, f.sparse, nil
}

func (f *docEmbedderFake) EmbedQuery(context.Context, string) ([]float32, domain.SparseVector, error) {
	return nil, domain.SparseVector{}, errors.New("not implemented")
}

type indexerFake struct {
	indexedDoc    *domain.Document
	indexedChunks []string
	err           error
}

func (f *indexerFake) IndexChunks(_ context.Context, doc *domain.Document, chunks []string, _ [][]float32, _ []domain.SparseVector) error {
	if f.err != nil {
		return f.err
	}
	f.indexedDoc = doc
	f.indexedChunks = chunks
	return nil
}

func processedDoc() *domain.Document {
	return &domain.Document{
		ID:        "doc-1",
		Namespace: "deploy",
		Tier:      domain.TierPrimary,
		Title:     "Deploy Guide",
	}
}

func TestProcessByIDSuccess(t *testing.T) {
	repo := &processRepoFake{doc: processedDoc()}
	indexer := &indexerFake{}
	var observed int
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{text: "text"},
		&chunkerFake{chunks: []string{"a", "b"}},
		&docEmbedderFake{
			dense:  [][]float32{{1}, {2}},
			sparse: []domain.SparseVector{{}, {}},
		},
		indexer,
		WithChunkObserver(func(chunks int) { observed = chunks }),
	)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected 2 status calls, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[0].status != domain.StatusProcessing || repo.statusCalls[1].status != domain.StatusReady {
		t.Fatalf("unexpected status sequence: %+v", repo.statusCalls)
	}
	if indexer.indexedDoc == nil || indexer.indexedDoc.Namespace != "deploy" {
		t.Fatalf("expected chunks indexed into document namespace, got %+v", indexer.indexedDoc)
	}
	if observed != 2 {
		t.Fatalf("expected chunk observer to see 2 chunks, got %d", observed)
	}
}

func TestProcessByIDMarksFailedOnExtractError(t *testing.T) {
	repo := &processRepoFake{doc: processedDoc()}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{err: errors.New("extract fail")},
		&chunkerFake{chunks: []string{"a"}},
		&docEmbedderFake{dense: [][]float32{{1}}, sparse: []domain.SparseVector{{}}},
		&indexerFake{},
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected processing + failed status updates, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[1].status != domain.StatusFailed || repo.statusCalls[1].errMsg == "" {
		t.Fatalf("expected failed status with message, got %+v", repo.statusCalls[1])
	}
}

func TestProcessByIDMarksFailedOnVectorMismatch(t *testing.T) {
	repo := &processRepoFake{doc: processedDoc()}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{text: "text"},
		&chunkerFake{chunks: []string{"a", "b"}},
		&docEmbedderFake{dense: [][]float32{{1}}, sparse: []domain.SparseVector{{}}},
		&indexerFake{},
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statusCalls) != 2 || repo.statusCalls[1].status != domain.StatusFailed {
		t.Fatalf("expected final failed status, got %+v", repo.statusCalls)
	}
}

func TestProcessByIDRejectsEmptyExtractedText(t *testing.T) {
	repo := &processRepoFake{doc: processedDoc()}
	uc := NewProcessDocumentUseCase(
		repo,
		&extractorFake{text: ""},
		&chunkerFake{chunks: nil},
		&docEmbedderFake{},
		&indexerFake{},
	)

	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
