// Package openaiapi talks to an OpenAI-compatible chat completions and
// embeddings API. Requests go through a shared rate limiter and the
// resilience executor; provider failures that are worth retrying surface
// as temporary errors.
package openaiapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
	"github.com/kirillkom/docs-qa-agent/internal/infrastructure/resilience"
)

// ChoiceEncoder maps the integer literals 0..n onto single token ids for
// the provider's encoding. The token counter implements it.
type ChoiceEncoder interface {
	ChoiceTokenIDs(n int) ([]int, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	chatModel  string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
	limiter    *rate.Limiter
	choices    ChoiceEncoder
}

type Options struct {
	BaseURL           string
	APIKey            string
	ChatModel         string
	EmbedModel        string
	RequestsPerSecond float64
	Resilience        resilience.Config
}

func New(opts Options, choices ChoiceEncoder, executor *resilience.Executor) *Client {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		chatModel:  opts.ChatModel,
		embedModel: opts.EmbedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		choices:    choices,
	}
}

func (c *Client) Model() string { return c.chatModel }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string         `json:"model"`
	Messages    []chatMessage  `json:"messages"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	LogitBias   map[string]int `json:"logit_bias,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the role turns as-is and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, turns []domain.PromptTurn, maxTokens int) (string, error) {
	request := chatRequest{
		Model:       c.chatModel,
		Messages:    toMessages(turns),
		MaxTokens:   maxTokens,
		Temperature: 0,
	}

	text, err := c.chat(ctx, "chat", request)
	if err != nil {
		return "", err
	}
	return text, nil
}

// CompleteChoice constrains the completion to a single token drawn from the
// integer literals 0..numOptions and returns the decoded integer. The bias
// map makes any other token practically unreachable; the provider still
// returns free text, so the reply is parsed and range checked.
func (c *Client) CompleteChoice(ctx context.Context, turns []domain.PromptTurn, numOptions int) (int, error) {
	if numOptions < 1 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "complete choice",
			fmt.Errorf("need at least one option, got %d", numOptions))
	}

	ids, err := c.choices.ChoiceTokenIDs(numOptions)
	if err != nil {
		return 0, domain.WrapError(domain.ErrConfiguration, "complete choice", err)
	}
	bias := make(map[string]int, len(ids))
	for _, id := range ids {
		bias[strconv.Itoa(id)] = 100
	}

	request := chatRequest{
		Model:       c.chatModel,
		Messages:    toMessages(turns),
		MaxTokens:   1,
		Temperature: 0,
		LogitBias:   bias,
	}

	text, err := c.chat(ctx, "chat_choice", request)
	if err != nil {
		return 0, err
	}

	choice, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, domain.WrapError(domain.ErrProvider, "complete choice",
			fmt.Errorf("reply %q is not an integer literal", text))
	}
	return choice, nil
}

func (c *Client) chat(ctx context.Context, operation string, request chatRequest) (string, error) {
	var response chatResponse
	err := c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.postJSON(ctx, "/chat/completions", request, &response, operation)
	}, classifyProviderError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrProvider, operation, fmt.Errorf("response carries no choices"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedTexts returns one dense vector per input, in input order.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := embeddingsRequest{Model: c.embedModel, Input: texts}
	var response embeddingsResponse
	err := c.executor.Execute(ctx, "embed", func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.postJSON(ctx, "/embeddings", request, &response, "embed")
	}, classifyProviderError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed", err)
	}
	if len(response.Data) != len(texts) {
		return nil, domain.WrapError(domain.ErrProvider, "embed",
			fmt.Errorf("requested %d embeddings, got %d", len(texts), len(response.Data)))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range response.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, domain.WrapError(domain.ErrProvider, "embed",
				fmt.Errorf("embedding index %d out of range", item.Index))
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

func toMessages(turns []domain.PromptTurn) []chatMessage {
	messages := make([]chatMessage, len(turns))
	for i, turn := range turns {
		messages[i] = chatMessage{Role: turn.Role, Content: turn.Content}
	}
	return messages
}
