// Package httpadapter exposes the query pipeline and the document registry
// over HTTP.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
	"github.com/kirillkom/docs-qa-agent/internal/observability/metrics"
)

const serviceName = "api"

const maxUploadBytes = 64 << 20

type Router struct {
	ask            ports.QueryService
	ingest         ports.DocumentIngestor
	documents      ports.DocumentReader
	metrics        *metrics.HTTPServerMetrics
	logger         *slog.Logger
	minQueryLength int
}

func NewRouter(
	ask ports.QueryService,
	ingest ports.DocumentIngestor,
	documents ports.DocumentReader,
	m *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	minQueryLength int,
) *Router {
	if minQueryLength <= 0 {
		minQueryLength = 10
	}
	return &Router{
		ask:            ask,
		ingest:         ingest,
		documents:      documents,
		metrics:        m,
		logger:         logger,
		minQueryLength: minQueryLength,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/ask", rt.askQuestion)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)

	var handler http.Handler = mux
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) askQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	query := strings.TrimSpace(req.Query)
	if len([]rune(query)) < rt.minQueryLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is too short"})
		return
	}

	answer, err := rt.ask.Run(r.Context(), query)
	if err != nil {
		if domain.IsKind(err, domain.ErrNoMatchingTopic) {
			rt.metrics.RecordNoTopicMatch(serviceName)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": "query does not match any configured topic",
			})
			return
		}
		rt.metrics.RecordQueryFailure(serviceName, "")
		rt.logger.Error("query_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(r.Context(), ports.UploadRequest{
		Filename:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		Namespace: r.FormValue("namespace"),
		Tier:      domain.Tier(r.FormValue("tier")),
		Title:     r.FormValue("title"),
		SourceURL: r.FormValue("source_url"),
	}, file)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.documents.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
