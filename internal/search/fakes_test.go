package search_test

import (
	"context"
	"sync"

	"jobmate/search-service/internal/model"
)

// --- Fakes ---

// fakeTextIndex filters and pages a fixed hit list the way the Postgres
// store does. Hits must be given in rank order.
type fakeTextIndex struct {
	mu       sync.Mutex
	hits     []model.TextHit
	total    int // overrides the computed count when > 0
	err      error
	countErr error
	queries  []model.TextQuery
}

func (f *fakeTextIndex) SearchText(ctx context.Context, q model.TextQuery) ([]model.TextHit, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return page(f.matching(q), q.Offset, q.Limit), nil
}

func (f *fakeTextIndex) CountText(_ context.Context, q model.TextQuery) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	if f.total > 0 {
		return f.total, nil
	}
	return len(f.matching(q)), nil
}

func (f *fakeTextIndex) matching(q model.TextQuery) []model.TextHit {
	var out []model.TextHit
	for _, h := range f.hits {
		if h.Candidate.TenantID == q.TenantID && q.Sponsorship.Allows(h.Candidate.NeedsSponsorship) {
			out = append(out, h)
		}
	}
	return out
}

// fakeVectorIndex applies the tenant, threshold and sponsorship filters to a
// fixed hit list given in similarity order.
type fakeVectorIndex struct {
	mu      sync.Mutex
	hits    []model.VectorHit
	err     error
	queries []model.VectorQuery
}

func (f *fakeVectorIndex) matching(q model.VectorQuery) []model.VectorHit {
	var out []model.VectorHit
	for _, h := range f.hits {
		if h.Candidate.TenantID == q.TenantID && h.Similarity >= q.Threshold &&
			q.Sponsorship.Allows(h.Candidate.NeedsSponsorship) {
			out = append(out, h)
		}
	}
	return out
}

func (f *fakeVectorIndex) SearchVector(_ context.Context, q model.VectorQuery) ([]model.VectorHit, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return page(f.matching(q), q.Offset, q.Limit), nil
}

func (f *fakeVectorIndex) CountVector(_ context.Context, q model.VectorQuery) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.matching(q)), nil
}

type fakeEmbedder struct {
	vec   []float32
	err   error
	mu    sync.Mutex
	terms []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.terms = append(f.terms, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type staticScoring struct {
	cfg model.ScoringConfig
	err error
}

func (s staticScoring) GetScoringConfig(context.Context, string) (model.ScoringConfig, error) {
	return s.cfg, s.err
}

// stubStrategy records the requests it receives.
type stubStrategy struct {
	name     string
	modes    []model.Mode
	priority int
	err      error
	calls    []model.SearchRequest
}

func (s *stubStrategy) Name() string  { return s.name }
func (s *stubStrategy) Priority() int { return s.priority }
func (s *stubStrategy) CanHandle(m model.Mode) bool {
	for _, mode := range s.modes {
		if mode == m {
			return true
		}
	}
	return false
}

func (s *stubStrategy) Search(_ context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return model.NewSearchResponse([]model.SearchResult{{CandidateID: "c1", Strategy: s.name}}, 1, req.Page, req.PageSize), nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// cand builds a candidate indexed under the global tenant.
func cand(id, first, last string, sponsorship bool, skills ...string) model.IndexedCandidate {
	return candIn(model.GlobalTenant, id, first, last, sponsorship, skills...)
}

func candIn(tenant, id, first, last string, sponsorship bool, skills ...string) model.IndexedCandidate {
	return model.IndexedCandidate{
		CandidateID:      id,
		TenantID:         tenant,
		FirstName:        first,
		LastName:         last,
		NeedsSponsorship: sponsorship,
		Skills:           skills,
	}
}
