package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"jobmate/search-service/internal/model"
)

const hybridName = "hybrid"

// DefaultCandidateCap bounds how many hits each hybrid leg fetches before
// fusion.
const DefaultCandidateCap = 500

// Hybrid fuses keyword rank and semantic similarity using the tenant's
// weights and fusion strategy.
type Hybrid struct {
	text         TextIndex
	vector       VectorIndex
	embedder     QueryEmbedder
	scoring      ScoringSource
	candidateCap int
	priority     int
}

// NewHybrid returns the hybrid strategy with priority 30. A candidateCap <= 0
// uses DefaultCandidateCap.
func NewHybrid(text TextIndex, vector VectorIndex, embedder QueryEmbedder, scoring ScoringSource, candidateCap int) *Hybrid {
	if candidateCap <= 0 {
		candidateCap = DefaultCandidateCap
	}
	return &Hybrid{
		text:         text,
		vector:       vector,
		embedder:     embedder,
		scoring:      scoring,
		candidateCap: candidateCap,
		priority:     30,
	}
}

func (s *Hybrid) Name() string                   { return hybridName }
func (s *Hybrid) CanHandle(mode model.Mode) bool { return mode == model.ModeHybrid }
func (s *Hybrid) Priority() int                  { return s.priority }

// Search runs both legs concurrently, fuses them and paginates in memory.
// Either leg failing fails the whole search and cancels the other.
func (s *Hybrid) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return model.NewSearchResponse(nil, 0, req.Page, req.PageSize), nil
	}

	cfg, err := s.scoring.GetScoringConfig(ctx, req.Tenant())
	if err != nil {
		return nil, fmt.Errorf("load scoring config: %w", err)
	}
	tsq, tokens := BuildPrefixQuery(term)

	var (
		textHits   []model.TextHit
		vectorHits []model.VectorHit
	)
	g, gctx := errgroup.WithContext(ctx)
	if tsq != "" {
		g.Go(func() error {
			hits, err := s.text.SearchText(gctx, model.TextQuery{
				TenantID:    req.Tenant(),
				TSQuery:     tsq,
				Sponsorship: req.Sponsorship,
				Limit:       s.candidateCap,
			})
			if err != nil {
				return fmt.Errorf("hybrid text leg: %w", err)
			}
			textHits = hits
			return nil
		})
	}
	g.Go(func() error {
		vec, err := s.embedder.Embed(gctx, term)
		if err != nil {
			return fmt.Errorf("embed query: %w", err)
		}
		hits, err := s.vector.SearchVector(gctx, model.VectorQuery{
			TenantID:    req.Tenant(),
			Embedding:   vec,
			Threshold:   cfg.SimilarityThreshold,
			Sponsorship: req.Sponsorship,
			Limit:       s.candidateCap,
		})
		if err != nil {
			return fmt.Errorf("hybrid vector leg: %w", err)
		}
		vectorHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := Fuse(cfg, textHits, vectorHits)
	results := make([]model.SearchResult, 0, len(fused))
	for _, f := range fused {
		var nameTerms []string
		if f.InText {
			nameTerms = tokens
		}
		matched := mergeTerms(nameTerms, matchedSkills(tokens, f.Candidate.Skills))
		results = append(results, toResult(f.Candidate, f.Score, matched, hybridName))
	}
	// also applied in SQL
	results = FilterSponsorship(results, req.Sponsorship)
	SortResults(results)

	total := len(results)
	page := Paginate(results, req.Offset(), req.PageSize)
	return model.NewSearchResponse(page, total, req.Page, req.PageSize), nil
}
