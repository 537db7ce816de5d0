// Package openai backs the embedding and generation capabilities with the
// OpenAI API.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"faqrag/internal/domain"
)

// Low-variance sampling keeps answers repeatable for identical questions.
const (
	temperature = 0.1
	maxTokens   = 500
)

// Client implements domain.Embedder and domain.Generator against the
// OpenAI API.
type Client struct {
	api        openai.Client
	embedModel string
	llmModel   string
}

// New returns a client authenticated with apiKey, using the given model
// names. Extra request options (base URL, retries) are passed through to
// the underlying SDK client.
func New(apiKey, embedModel, llmModel string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{
		api:        openai.NewClient(opts...),
		embedModel: embedModel,
		llmModel:   llmModel,
	}
}

// Embed returns one vector per input text, in input order. Failures wrap
// domain.ErrEmbedding; the provider error text is flattened so its type
// never travels upward.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			domain.ErrEmbedding, len(resp.Data), len(texts))
	}
	vectors := make([][]float64, len(texts))
	for _, item := range resp.Data {
		vectors[int(item.Index)] = item.Embedding
	}
	return vectors, nil
}

// Generate produces a chat completion from the system and user prompts.
// Failures wrap domain.ErrGeneration.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.llmModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGeneration)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
