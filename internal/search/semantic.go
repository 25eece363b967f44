package search

import (
	"context"
	"fmt"
	"strings"

	"jobmate/search-service/internal/model"
)

const semanticName = "semantic"

// Semantic ranks candidates by embedding similarity above the tenant's
// threshold.
type Semantic struct {
	index    VectorIndex
	embedder QueryEmbedder
	scoring  ScoringSource
	priority int
}

// NewSemantic returns the semantic strategy with priority 20.
func NewSemantic(index VectorIndex, embedder QueryEmbedder, scoring ScoringSource) *Semantic {
	return &Semantic{index: index, embedder: embedder, scoring: scoring, priority: 20}
}

func (s *Semantic) Name() string                   { return semanticName }
func (s *Semantic) CanHandle(mode model.Mode) bool { return mode == model.ModeSemantic }
func (s *Semantic) Priority() int                  { return s.priority }

func (s *Semantic) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return model.NewSearchResponse(nil, 0, req.Page, req.PageSize), nil
	}

	cfg, err := s.scoring.GetScoringConfig(ctx, req.Tenant())
	if err != nil {
		return nil, fmt.Errorf("load scoring config: %w", err)
	}
	vec, err := s.embedder.Embed(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	q := model.VectorQuery{
		TenantID:    req.Tenant(),
		Embedding:   vec,
		Threshold:   cfg.SimilarityThreshold,
		Sponsorship: req.Sponsorship,
		Limit:       req.PageSize,
		Offset:      req.Offset(),
	}
	hits, err := s.index.SearchVector(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	total, err := s.index.CountVector(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("semantic count: %w", err)
	}

	tokens := Tokenize(term)
	results := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, toResult(h.Candidate, h.Similarity, matchedSkills(tokens, h.Candidate.Skills), semanticName))
	}
	SortResults(results)
	return model.NewSearchResponse(results, total, req.Page, req.PageSize), nil
}
