package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/search-service/internal/model"
)

// PostgresStore keeps scoring configs in the scoring_configs table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a store over pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get loads the tenant's row, returning ErrNotFound when absent.
func (s *PostgresStore) Get(ctx context.Context, tenantID string) (model.ScoringConfig, error) {
	var cfg model.ScoringConfig
	var fusion string
	err := s.pool.QueryRow(ctx,
		`SELECT tenant_id, fusion_strategy, semantic_weight, keyword_weight, similarity_threshold
		 FROM scoring_configs
		 WHERE tenant_id = $1`,
		tenantID,
	).Scan(&cfg.TenantID, &fusion, &cfg.SemanticWeight, &cfg.KeywordWeight, &cfg.SimilarityThreshold)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ScoringConfig{}, ErrNotFound
	}
	if err != nil {
		return model.ScoringConfig{}, fmt.Errorf("select scoring_configs: %w", err)
	}

	// Rows written before a fusion variant was retired fall back to the default.
	cfg.FusionStrategy, err = model.ParseFusionStrategy(fusion)
	if err != nil {
		cfg.FusionStrategy = model.FusionWeightedSum
	}
	return cfg, nil
}

// Put inserts or replaces the tenant's row.
func (s *PostgresStore) Put(ctx context.Context, cfg model.ScoringConfig) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scoring_configs
		   (tenant_id, fusion_strategy, semantic_weight, keyword_weight, similarity_threshold, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (tenant_id) DO UPDATE
		 SET fusion_strategy      = EXCLUDED.fusion_strategy,
		     semantic_weight      = EXCLUDED.semantic_weight,
		     keyword_weight       = EXCLUDED.keyword_weight,
		     similarity_threshold = EXCLUDED.similarity_threshold,
		     updated_at           = NOW()`,
		cfg.TenantID, string(cfg.FusionStrategy), cfg.SemanticWeight, cfg.KeywordWeight, cfg.SimilarityThreshold,
	)
	if err != nil {
		return fmt.Errorf("upsert scoring_configs: %w", err)
	}
	return nil
}
