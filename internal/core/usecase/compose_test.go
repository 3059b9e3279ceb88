package usecase

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

// templateStoreFake serves in-memory templates keyed by name.
type templateStoreFake struct {
	templates map[string][]domain.PromptTurn
	err       error
}

func (f *templateStoreFake) Load(name string) ([]domain.PromptTurn, error) {
	if f.err != nil {
		return nil, f.err
	}
	turns, ok := f.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return turns, nil
}

func defaultTemplates() *templateStoreFake {
	return &templateStoreFake{templates: map[string][]domain.PromptTurn{
		TemplateDocsAnswer: {
			{Role: "system", Content: "Answer only from the documents."},
			{Role: "user", Content: "placeholder"},
		},
		TemplateTopicRouter: {
			{Role: "system", Content: "Pick the matching topic number."},
			{Role: "user", Content: "placeholder"},
		},
	}}
}

func TestComposeAnswerSubstitutesOnlyUserTurn(t *testing.T) {
	composer := NewComposer(defaultTemplates())

	docs := []domain.Candidate{
		{Content: "bees dance", Ordinal: 1},
		{Content: "stars shine", Ordinal: 2},
	}
	turns, err := composer.ComposeAnswer("how do bees talk?", docs)
	if err != nil {
		t.Fatalf("ComposeAnswer() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != "system" || turns[0].Content != "Answer only from the documents." {
		t.Fatalf("system turn mutated: %+v", turns[0])
	}
	want := "Query: how do bees talk? Documents: bees dance doc_num: [1] stars shine doc_num: [2]"
	if turns[1].Content != want {
		t.Fatalf("user turn = %q, want %q", turns[1].Content, want)
	}
}

func TestComposeTopicChoiceNumbersCatalogInOrder(t *testing.T) {
	composer := NewComposer(defaultTemplates())

	catalog := domain.TopicCatalog{
		{Key: "beekeeping", Description: "bees"},
		{Key: "astronomy", Description: "stars"},
	}
	turns, err := composer.ComposeTopicChoice("what is a hive?", catalog)
	if err != nil {
		t.Fatalf("ComposeTopicChoice() error = %v", err)
	}
	want := "user query: what is a hive? topics: 1. beekeeping: bees 2. astronomy: stars"
	if turns[1].Content != want {
		t.Fatalf("user turn = %q, want %q", turns[1].Content, want)
	}
}

func TestComposeFailsWithoutUserTurn(t *testing.T) {
	store := &templateStoreFake{templates: map[string][]domain.PromptTurn{
		TemplateDocsAnswer: {{Role: "system", Content: "no user turn here"}},
	}}
	composer := NewComposer(store)

	_, err := composer.ComposeAnswer("q", nil)
	if err == nil {
		t.Fatalf("expected error for template without user turn")
	}
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestComposeFailsWithMultipleUserTurns(t *testing.T) {
	store := &templateStoreFake{templates: map[string][]domain.PromptTurn{
		TemplateDocsAnswer: {
			{Role: "user", Content: "one"},
			{Role: "user", Content: "two"},
		},
	}}
	composer := NewComposer(store)

	_, err := composer.ComposeAnswer("q", nil)
	if err == nil || !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestComposeDoesNotMutateStoredTemplate(t *testing.T) {
	store := defaultTemplates()
	composer := NewComposer(store)

	if _, err := composer.ComposeAnswer("first", nil); err != nil {
		t.Fatalf("ComposeAnswer() error = %v", err)
	}
	stored := store.templates[TemplateDocsAnswer]
	if strings.Contains(stored[1].Content, "first") {
		t.Fatalf("stored template mutated: %q", stored[1].Content)
	}
}
