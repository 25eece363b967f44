package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/search"
)

func fusionCfg(f model.FusionStrategy, sw, kw float64) model.ScoringConfig {
	return model.ScoringConfig{FusionStrategy: f, SemanticWeight: sw, KeywordWeight: kw, SimilarityThreshold: 0.3}
}

func scores(hits []search.FusedHit) map[string]float64 {
	out := map[string]float64{}
	for _, h := range hits {
		out[h.Candidate.CandidateID] = h.Score
	}
	return out
}

var (
	fusionText = []model.TextHit{
		{Candidate: cand("a", "", "", false), Rank: 0.6},
		{Candidate: cand("b", "", "", false), Rank: 0.3},
	}
	fusionVector = []model.VectorHit{
		{Candidate: cand("b", "", "", false), Similarity: 0.8},
		{Candidate: cand("c", "", "", false), Similarity: 0.4},
	}
)

func TestFuse_WeightedSum(t *testing.T) {
	got := scores(search.Fuse(fusionCfg(model.FusionWeightedSum, 0.6, 0.4), fusionText, fusionVector))
	assert.InDelta(t, 0.4, got["a"], 1e-9)
	assert.InDelta(t, 0.6*0.8+0.4*0.5, got["b"], 1e-9)
	assert.InDelta(t, 0.6*0.4, got["c"], 1e-9)
}

func TestFuse_MinMax(t *testing.T) {
	got := scores(search.Fuse(fusionCfg(model.FusionMinMax, 0.5, 0.5), fusionText, fusionVector))
	assert.InDelta(t, 0.5, got["a"], 1e-9) // t=1, s absent
	assert.InDelta(t, 0.5, got["b"], 1e-9) // t=0, s=1
	assert.InDelta(t, 0.0, got["c"], 1e-9) // s=0 (lowest)
	assert.Contains(t, got, "c", "raw similarity is positive so the candidate stays")
}

func TestFuse_RRF(t *testing.T) {
	got := scores(search.Fuse(fusionCfg(model.FusionRRF, 1, 1), fusionText, fusionVector))
	first := 61.0 / 61.0
	second := 61.0 / 62.0
	assert.InDelta(t, first/2, got["a"], 1e-9)
	assert.InDelta(t, (second+first)/2, got["b"], 1e-9)
	assert.InDelta(t, second/2, got["c"], 1e-9)
}

func TestFuse_WeightsAboveOneAreNormalized(t *testing.T) {
	got := scores(search.Fuse(fusionCfg(model.FusionWeightedSum, 3, 1), fusionText, fusionVector))
	for id, s := range got {
		assert.GreaterOrEqual(t, s, 0.0, id)
		assert.LessOrEqual(t, s, 1.0, id)
	}
	assert.InDelta(t, (3*0.8+1*0.5)/4, got["b"], 1e-9)
}

func TestFuse_ExcludesZeroOnBothLegs(t *testing.T) {
	hits := search.Fuse(fusionCfg(model.FusionWeightedSum, 0.6, 0.4),
		[]model.TextHit{{Candidate: cand("z", "", "", false), Rank: 0}},
		[]model.VectorHit{{Candidate: cand("y", "", "", false), Similarity: 0.7}})
	require.Len(t, hits, 1)
	assert.Equal(t, "y", hits[0].Candidate.CandidateID)
}

func TestFuse_KeywordOnlyWeights(t *testing.T) {
	got := scores(search.Fuse(fusionCfg(model.FusionWeightedSum, 0, 1), fusionText, fusionVector))
	assert.InDelta(t, 0.0, got["c"], 1e-9)
	assert.InDelta(t, 1.0, got["a"], 1e-9)
}
