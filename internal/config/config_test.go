package config

import "testing"

func TestLoadBudgetDefaults(t *testing.T) {
	t.Setenv("MAX_EVIDENCE_TOKENS", "")
	t.Setenv("MAX_EVIDENCE_DOCUMENTS", "")
	t.Setenv("RETRIEVAL_TOP_K", "")
	t.Setenv("MIN_QUERY_LENGTH", "")

	cfg := Load()
	if cfg.MaxEvidenceTokens != 3500 {
		t.Fatalf("expected default evidence token budget 3500, got %d", cfg.MaxEvidenceTokens)
	}
	if cfg.MaxEvidenceDocuments != 6 {
		t.Fatalf("expected default evidence document budget 6, got %d", cfg.MaxEvidenceDocuments)
	}
	if cfg.RetrievalTopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.RetrievalTopK)
	}
	if cfg.MinQueryLength != 10 {
		t.Fatalf("expected default min query length 10, got %d", cfg.MinQueryLength)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("MAX_EVIDENCE_TOKENS", "1200")
	t.Setenv("PROVIDER_RPS", "2.5")
	t.Setenv("CHAT_MODEL", "gpt-4o")

	cfg := Load()
	if cfg.MaxEvidenceTokens != 1200 {
		t.Fatalf("expected evidence token override, got %d", cfg.MaxEvidenceTokens)
	}
	if cfg.ProviderRPS != 2.5 {
		t.Fatalf("expected provider rps 2.5, got %f", cfg.ProviderRPS)
	}
	if cfg.ChatModel != "gpt-4o" {
		t.Fatalf("expected chat model override, got %q", cfg.ChatModel)
	}
}

func TestTopicCatalogParsesOrderedPairs(t *testing.T) {
	cfg := Config{TopicNamespacesRaw: "deploy: deployment guides, billing: invoices and plans"}
	catalog, err := cfg.TopicCatalog()
	if err != nil {
		t.Fatalf("TopicCatalog() error = %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(catalog))
	}
	if catalog[0].Key != "deploy" || catalog[0].Description != "deployment guides" {
		t.Fatalf("unexpected first topic: %+v", catalog[0])
	}
	if catalog[1].Key != "billing" {
		t.Fatalf("order not preserved: %+v", catalog)
	}
}

func TestTopicCatalogRejectsMalformedPair(t *testing.T) {
	cfg := Config{TopicNamespacesRaw: "deploy"}
	if _, err := cfg.TopicCatalog(); err == nil {
		t.Fatalf("expected error for pair without description")
	}
}

func TestTopicCatalogRejectsDuplicateKey(t *testing.T) {
	cfg := Config{TopicNamespacesRaw: "deploy:a,deploy:b"}
	if _, err := cfg.TopicCatalog(); err == nil {
		t.Fatalf("expected error for duplicate key")
	}
}

func TestTopicCatalogRejectsEmpty(t *testing.T) {
	cfg := Config{TopicNamespacesRaw: "  "}
	if _, err := cfg.TopicCatalog(); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}
