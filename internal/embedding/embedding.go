// Package embedding generates text embeddings for indexing and for search
// queries.
//
// OpenAIEmbedder talks to any OpenAI-compatible endpoint through langchaingo.
// Resilient adds a rate limit and circuit breaker in front of it, and Cached
// memoizes query embeddings in Redis.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyEmbedding is returned when the provider answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding provider returned no vector")

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Model names the embedding model, recorded with each index entry.
	Model() string
}

// OpenAIEmbedder implements Embedder using an OpenAI-compatible API.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *slog.Logger
}

// NewOpenAIEmbedder returns an embedder for model at baseURL. Use "none" as
// token for local services that do not authenticate.
func NewOpenAIEmbedder(baseURL, token, model string) (*OpenAIEmbedder, error) {
	if model == "" {
		return nil, errors.New("embedding model is required")
	}
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &OpenAIEmbedder{
		embedder: embedder,
		model:    model,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// Model implements Embedder.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Embed implements Embedder. Queries and documents go through the same call
// so both sides of a similarity comparison use one code path.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vectors[0], nil
}
