package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/core/ports"
)

// Template names resolved through the template store.
const (
	TemplateDocsAnswer  = "docs_answer"
	TemplateTopicRouter = "topic_router"
)

// Composer renders role-turn prompts from named templates. Exactly one turn,
// the user turn, is substituted; every other turn passes through untouched.
type Composer struct {
	store ports.TemplateStore
}

func NewComposer(store ports.TemplateStore) *Composer {
	return &Composer{store: store}
}

// ComposeAnswer builds the document-QA prompt: each candidate's content is
// tagged inline with its ordinal so the model can cite it back.
func (c *Composer) ComposeAnswer(query string, docs []domain.Candidate) ([]domain.PromptTurn, error) {
	turns, err := c.store.Load(TemplateDocsAnswer)
	if err != nil {
		return nil, fmt.Errorf("load answer template: %w", err)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, fmt.Sprintf("%s doc_num: [%d]", doc.Content, doc.Ordinal))
	}
	body := "Query: " + query + " Documents: " + strings.Join(parts, " ")
	return substituteUserTurn(turns, body)
}

// ComposeTopicChoice builds the routing prompt: the query plus a numbered
// "index. key: description" list in catalog order.
func (c *Composer) ComposeTopicChoice(query string, catalog domain.TopicCatalog) ([]domain.PromptTurn, error) {
	turns, err := c.store.Load(TemplateTopicRouter)
	if err != nil {
		return nil, fmt.Errorf("load router template: %w", err)
	}

	entries := make([]string, 0, len(catalog))
	for i, topic := range catalog {
		entries = append(entries, fmt.Sprintf("%d. %s: %s", i+1, topic.Key, topic.Description))
	}
	body := "user query: " + query + " topics: " + strings.Join(entries, " ")
	return substituteUserTurn(turns, body)
}

func substituteUserTurn(turns []domain.PromptTurn, content string) ([]domain.PromptTurn, error) {
	out := make([]domain.PromptTurn, len(turns))
	copy(out, turns)

	userIdx := -1
	for i, turn := range out {
		if turn.Role != "user" {
			continue
		}
		if userIdx >= 0 {
			return nil, domain.WrapError(domain.ErrConfiguration, "compose prompt",
				errors.New("template has more than one user turn"))
		}
		userIdx = i
	}
	if userIdx < 0 {
		return nil, domain.WrapError(domain.ErrConfiguration, "compose prompt",
			errors.New("template has no user turn"))
	}

	out[userIdx].Content = content
	return out, nil
}
