// Package pinecone is a REST client for a Pinecone-style hybrid vector
// index. One index holds every topic; queries are partitioned by namespace
// and filtered by evidence tier through vector metadata.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type sparsePayload struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// Search runs one namespaced hybrid query filtered to a single evidence
// tier. Vector values are left out of the response; only score and metadata
// come back.
func (c *Client) Search(
	ctx context.Context,
	namespace string,
	tier domain.Tier,
	dense []float32,
	sparse domain.SparseVector,
	topK int,
) ([]domain.Candidate, error) {
	reqBody := map[string]any{
		"namespace":       namespace,
		"topK":            topK,
		"includeMetadata": true,
		"includeValues":   false,
		"vector":          dense,
		"filter": map[string]any{
			"tier": map[string]any{"$eq": string(tier)},
		},
	}
	if len(sparse.Indices) > 0 {
		reqBody["sparseVector"] = sparsePayload{Indices: sparse.Indices, Values: sparse.Values}
	}

	var queryResp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.postJSON(ctx, "/query", reqBody, &queryResp, "query"); err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(queryResp.Matches))
	for _, m := range queryResp.Matches {
		sourceID := getStringMetadata(m.Metadata, "source_id")
		if sourceID == "" {
			sourceID = m.ID
		}
		out = append(out, domain.Candidate{
			SourceID: sourceID,
			Content:  getStringMetadata(m.Metadata, "content"),
			Title:    getStringMetadata(m.Metadata, "title"),
			URL:      getStringMetadata(m.Metadata, "url"),
			Tier:     tier,
			Score:    m.Score,
		})
	}
	return out, nil
}

// IndexChunks upserts one vector per chunk into the document's namespace.
// Metadata carries everything retrieval needs to rebuild a candidate, so
// reads never touch the source store.
func (c *Client) IndexChunks(
	ctx context.Context,
	doc *domain.Document,
	chunks []string,
	dense [][]float32,
	sparse []domain.SparseVector,
) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(dense) || len(chunks) != len(sparse) {
		return fmt.Errorf("chunks/vectors mismatch: %d chunks, %d dense, %d sparse", len(chunks), len(dense), len(sparse))
	}

	type vectorEntry struct {
		ID           string         `json:"id"`
		Values       []float32      `json:"values"`
		SparseValues *sparsePayload `json:"sparseValues,omitempty"`
		Metadata     map[string]any `json:"metadata"`
	}

	vectors := make([]vectorEntry, 0, len(chunks))
	for i := range chunks {
		entry := vectorEntry{
			ID:     uuid.NewString(),
			Values: dense[i],
			Metadata: map[string]any{
				"source_id":   doc.ID,
				"content":     chunks[i],
				"title":       doc.Title,
				"url":         doc.SourceURL,
				"tier":        string(doc.Tier),
				"chunk_index": i,
			},
		}
		if len(sparse[i].Indices) > 0 {
			entry.SparseValues = &sparsePayload{Indices: sparse[i].Indices, Values: sparse[i].Values}
		}
		vectors = append(vectors, entry)
	}

	reqBody := map[string]any{
		"namespace": doc.Namespace,
		"vectors":   vectors,
	}
	var upsertResp struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	return c.postJSON(ctx, "/vectors/upsert", reqBody, &upsertResp, "upsert")
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("index %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return fmt.Errorf("index %s status: %s: %s", operation, resp.Status, msg)
		}
		return fmt.Errorf("index %s status: %s", operation, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func getStringMetadata(metadata map[string]any, key string) string {
	v, ok := metadata[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
