package search

import (
	"context"
	"fmt"

	"jobmate/search-service/internal/model"
)

const nameMatchName = "nameMatch"

// NameMatch ranks candidates with a conjunctive prefix full-text query.
type NameMatch struct {
	index    TextIndex
	priority int
}

// NewNameMatch returns the name-match strategy with priority 10.
func NewNameMatch(index TextIndex) *NameMatch {
	return &NameMatch{index: index, priority: 10}
}

func (s *NameMatch) Name() string                   { return nameMatchName }
func (s *NameMatch) CanHandle(mode model.Mode) bool { return mode == model.ModeNameMatch }
func (s *NameMatch) Priority() int                  { return s.priority }

// Search fetches one page of ranked matches and the total match count. Both
// queries apply the tenant and sponsorship filters, so the count is exact.
func (s *NameMatch) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	tsq, tokens := BuildPrefixQuery(req.Term)
	if tsq == "" {
		return model.NewSearchResponse(nil, 0, req.Page, req.PageSize), nil
	}

	q := model.TextQuery{
		TenantID:    req.Tenant(),
		TSQuery:     tsq,
		Sponsorship: req.Sponsorship,
		Limit:       req.PageSize,
		Offset:      req.Offset(),
	}
	hits, err := s.index.SearchText(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("name match search: %w", err)
	}
	total, err := s.index.CountText(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("name match count: %w", err)
	}

	results := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		// the query is conjunctive, so every token matched
		results = append(results, toResult(h.Candidate, h.Rank, append([]string(nil), tokens...), nameMatchName))
	}
	SortResults(results)
	return model.NewSearchResponse(results, total, req.Page, req.PageSize), nil
}
