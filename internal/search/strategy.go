// Package search routes candidate searches to interchangeable strategies.
//
// Strategies are registered once at startup in a Registry; the Dispatcher
// resolves a request's mode (classifying the term first when the mode is
// auto) and invokes the preferred strategy for it.
package search

import (
	"context"
	"sort"

	"jobmate/search-service/internal/model"
)

// Strategy executes one kind of candidate search.
type Strategy interface {
	// Name is reported as SearchResult.Strategy.
	Name() string
	// CanHandle reports whether the strategy serves mode.
	CanHandle(mode model.Mode) bool
	// Priority breaks ties when several strategies claim a mode; lower wins.
	Priority() int
	// Search runs the request. Store failures are returned as-is, never
	// as partial results.
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
}

// Registry is an immutable, priority-ordered set of strategies.
type Registry struct {
	strategies []Strategy
}

// NewRegistry orders strategies by ascending priority. Registration order
// breaks ties between equal priorities.
func NewRegistry(strategies ...Strategy) *Registry {
	ordered := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	return &Registry{strategies: ordered}
}

// Lookup returns the preferred strategy for mode without any fallback.
func (r *Registry) Lookup(mode model.Mode) (Strategy, bool) {
	for _, s := range r.strategies {
		if s.CanHandle(mode) {
			return s, true
		}
	}
	return nil, false
}

// Resolve returns the preferred strategy for mode, falling back to the
// semantic strategy. fallback reports whether the fallback was used.
func (r *Registry) Resolve(mode model.Mode) (s Strategy, fallback bool, err error) {
	if s, ok := r.Lookup(mode); ok {
		return s, false, nil
	}
	if s, ok := r.Lookup(model.ModeSemantic); ok {
		return s, true, nil
	}
	return nil, false, ErrNoStrategy
}

// Strategies returns the registered strategies in resolution order.
func (r *Registry) Strategies() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}
