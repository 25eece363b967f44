package model

import (
	"fmt"
	"strings"
)

// FusionStrategy names the formula the hybrid strategy uses to combine
// keyword rank and semantic similarity.
type FusionStrategy string

const (
	FusionWeightedSum FusionStrategy = "weighted_sum"
	FusionMinMax      FusionStrategy = "min_max"
	FusionRRF         FusionStrategy = "rrf"
)

// ParseFusionStrategy converts a raw tag, returning an error for values
// outside the known set. Empty means weighted_sum.
func ParseFusionStrategy(s string) (FusionStrategy, error) {
	switch f := FusionStrategy(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FusionWeightedSum, nil
	case FusionWeightedSum, FusionMinMax, FusionRRF:
		return f, nil
	}
	return "", fmt.Errorf("unknown fusion strategy %q", s)
}

// ScoringConfig holds a tenant's search weights and similarity threshold.
type ScoringConfig struct {
	TenantID            string         `json:"tenantId"`
	FusionStrategy      FusionStrategy `json:"fusionStrategy"`
	SemanticWeight      float64        `json:"semanticWeight"`
	KeywordWeight       float64        `json:"keywordWeight"`
	SimilarityThreshold float64        `json:"similarityThreshold"`
}

// DefaultScoringConfig is used when neither the tenant nor the global tenant
// has a stored configuration.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		TenantID:            GlobalTenant,
		FusionStrategy:      FusionWeightedSum,
		SemanticWeight:      0.60,
		KeywordWeight:       0.40,
		SimilarityThreshold: 0.35,
	}
}

// Validate checks the config invariants.
func (c ScoringConfig) Validate() error {
	if c.SemanticWeight < 0 || c.KeywordWeight < 0 {
		return fmt.Errorf("weights must be non-negative, got semantic=%v keyword=%v",
			c.SemanticWeight, c.KeywordWeight)
	}
	if c.SemanticWeight == 0 && c.KeywordWeight == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be within [0,1], got %v", c.SimilarityThreshold)
	}
	if _, err := ParseFusionStrategy(string(c.FusionStrategy)); err != nil {
		return err
	}
	return nil
}
