// Package scoring resolves per-tenant search weights, similarity threshold and
// fusion strategy.
//
// Reads always go to the store: there is no cache, so an update is visible to
// the next search issued for that tenant.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"jobmate/search-service/internal/model"
)

// ErrNotFound is returned by a Store when a tenant has no stored config.
var ErrNotFound = errors.New("scoring config not found")

// ErrInvalidConfig wraps validation failures from SetScoringConfig.
var ErrInvalidConfig = errors.New("invalid scoring config")

// Store persists scoring configs keyed by tenant id.
type Store interface {
	Get(ctx context.Context, tenantID string) (model.ScoringConfig, error)
	Put(ctx context.Context, cfg model.ScoringConfig) error
}

// Provider resolves scoring configs with tenant → global → built-in fallback.
type Provider struct {
	store  Store
	logger *slog.Logger
}

// NewProvider returns a Provider backed by store.
func NewProvider(store Store) *Provider {
	return &Provider{
		store:  store,
		logger: slog.Default().With("component", "scoring"),
	}
}

// GetScoringConfig returns the config for tenantID. Unknown tenants resolve
// to the global config, and a missing global config resolves to
// model.DefaultScoringConfig. The returned TenantID is the tenant whose row
// was actually used.
func (p *Provider) GetScoringConfig(ctx context.Context, tenantID string) (model.ScoringConfig, error) {
	tenantID = normalizeTenant(tenantID)

	cfg, err := p.store.Get(ctx, tenantID)
	switch {
	case err == nil:
		return cfg, nil
	case !errors.Is(err, ErrNotFound):
		return model.ScoringConfig{}, fmt.Errorf("get scoring config %s: %w", tenantID, err)
	}

	if tenantID != model.GlobalTenant {
		cfg, err = p.store.Get(ctx, model.GlobalTenant)
		switch {
		case err == nil:
			return cfg, nil
		case !errors.Is(err, ErrNotFound):
			return model.ScoringConfig{}, fmt.Errorf("get global scoring config: %w", err)
		}
	}

	return model.DefaultScoringConfig(), nil
}

// SetScoringConfig validates and stores a tenant's config.
func (p *Provider) SetScoringConfig(
	ctx context.Context,
	tenantID string,
	semanticWeight, keywordWeight, threshold float64,
	fusion string,
) (model.ScoringConfig, error) {
	strategy, err := model.ParseFusionStrategy(fusion)
	if err != nil {
		return model.ScoringConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := model.ScoringConfig{
		TenantID:            normalizeTenant(tenantID),
		FusionStrategy:      strategy,
		SemanticWeight:      semanticWeight,
		KeywordWeight:       keywordWeight,
		SimilarityThreshold: threshold,
	}
	if err := cfg.Validate(); err != nil {
		return model.ScoringConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := p.store.Put(ctx, cfg); err != nil {
		return model.ScoringConfig{}, fmt.Errorf("put scoring config %s: %w", cfg.TenantID, err)
	}

	p.logger.Info("scoring config updated",
		"tenant", cfg.TenantID,
		"fusion", cfg.FusionStrategy,
		"semanticWeight", cfg.SemanticWeight,
		"keywordWeight", cfg.KeywordWeight,
		"threshold", cfg.SimilarityThreshold,
	)
	return cfg, nil
}

func normalizeTenant(tenantID string) string {
	if t := strings.TrimSpace(tenantID); t != "" {
		return t
	}
	return model.GlobalTenant
}
