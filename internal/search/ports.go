package search

import (
	"context"

	"jobmate/search-service/internal/model"
)

// TextIndex is the ranked full-text side of the candidate index.
type TextIndex interface {
	// Both methods only see candidates indexed under q.TenantID.
	SearchText(ctx context.Context, q model.TextQuery) ([]model.TextHit, error)
	// CountText ignores Limit and Offset.
	CountText(ctx context.Context, q model.TextQuery) (int, error)
}

// VectorIndex is the embedding side of the candidate index.
type VectorIndex interface {
	// Both methods only see candidates indexed under q.TenantID.
	SearchVector(ctx context.Context, q model.VectorQuery) ([]model.VectorHit, error)
	// CountVector ignores Limit and Offset.
	CountVector(ctx context.Context, q model.VectorQuery) (int, error)
}

// QueryEmbedder turns a search term into an embedding.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ScoringSource resolves a tenant's scoring configuration. Implementations
// must fall back to global defaults rather than fail for unknown tenants.
type ScoringSource interface {
	GetScoringConfig(ctx context.Context, tenantID string) (model.ScoringConfig, error)
}
