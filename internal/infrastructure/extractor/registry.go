// Package extractor turns stored document blobs into plain text for
// chunking. One extractor per format; the registry picks by MIME type with
// a filename-extension fallback.
package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

type formatFunc func(r io.Reader, filename string) (string, error)

type Registry struct {
	storage ports.ObjectStorage
	formats map[string]formatFunc
}

func NewRegistry(storage ports.ObjectStorage) *Registry {
	r := &Registry{
		storage: storage,
		formats: make(map[string]formatFunc),
	}
	r.formats["text/plain"] = extractPlaintext
	r.formats["text/markdown"] = extractPlaintext
	r.formats["text/html"] = extractHTML
	r.formats["application/pdf"] = extractPDF
	r.formats["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"] = extractXLSX
	return r
}

func (r *Registry) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	format, err := r.resolve(doc)
	if err != nil {
		return "", err
	}

	reader, err := r.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	text, err := format(reader, doc.Filename)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", doc.Filename, err)
	}
	return strings.TrimSpace(text), nil
}

func (r *Registry) resolve(doc *domain.Document) (formatFunc, error) {
	mime := doc.MimeType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(strings.ToLower(mime))
	if format, ok := r.formats[mime]; ok {
		return format, nil
	}
	if format, ok := r.formats[mimeForExtension(doc.Filename)]; ok {
		return format, nil
	}
	return nil, domain.WrapError(domain.ErrInvalidInput, "extract text",
		fmt.Errorf("unsupported document format %q (%s)", doc.MimeType, doc.Filename))
}

func mimeForExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return ""
	}
}
