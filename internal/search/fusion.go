package search

import (
	"sort"

	"jobmate/search-service/internal/model"
)

// rrfK is the reciprocal rank fusion constant.
const rrfK = 60

// FusedHit is one candidate after combining its keyword and semantic legs.
// Rank and Similarity are the raw inputs; zero means the candidate was absent
// from that leg.
type FusedHit struct {
	Candidate  model.IndexedCandidate
	Rank       float64
	Similarity float64
	InText     bool
	InVector   bool
	Score      float64
}

// Fuse merges both legs and scores every candidate with cfg's fusion
// strategy and weights. Candidates with a zero raw score on both legs are
// dropped. The result keeps first-seen order (text hits, then vector hits);
// callers sort it.
func Fuse(cfg model.ScoringConfig, text []model.TextHit, vector []model.VectorHit) []FusedHit {
	byID := make(map[string]int, len(text)+len(vector))
	var hits []FusedHit
	slot := func(c model.IndexedCandidate) *FusedHit {
		if i, ok := byID[c.CandidateID]; ok {
			return &hits[i]
		}
		byID[c.CandidateID] = len(hits)
		hits = append(hits, FusedHit{Candidate: c})
		return &hits[len(hits)-1]
	}
	for _, h := range text {
		f := slot(h.Candidate)
		f.InText = true
		if h.Rank > f.Rank {
			f.Rank = h.Rank
		}
	}
	for _, h := range vector {
		f := slot(h.Candidate)
		f.InVector = true
		if h.Similarity > f.Similarity {
			f.Similarity = h.Similarity
		}
		if len(f.Candidate.Skills) == 0 {
			f.Candidate.Skills = h.Candidate.Skills
		}
	}

	kept := hits[:0]
	for _, h := range hits {
		if h.Rank > 0 || h.Similarity > 0 {
			kept = append(kept, h)
		}
	}
	hits = kept

	textNorm := normalizer(cfg.FusionStrategy, hits, func(h FusedHit) (float64, bool) { return h.Rank, h.InText })
	var vecNorm []float64
	switch cfg.FusionStrategy {
	case model.FusionMinMax, model.FusionRRF:
		vecNorm = normalizer(cfg.FusionStrategy, hits, func(h FusedHit) (float64, bool) { return h.Similarity, h.InVector })
	default:
		// cosine similarity is already in [0,1]
		vecNorm = make([]float64, len(hits))
		for i, h := range hits {
			vecNorm[i] = clamp01(h.Similarity)
		}
	}

	denom := cfg.SemanticWeight + cfg.KeywordWeight
	if denom < 1 {
		denom = 1
	}
	for i := range hits {
		s := vecNorm[i]
		t := textNorm[i]
		hits[i].Score = clamp01((cfg.SemanticWeight*s + cfg.KeywordWeight*t) / denom)
	}
	return hits
}

// normalizer maps one leg's raw values to [0,1] for each hit.
func normalizer(strategy model.FusionStrategy, hits []FusedHit, value func(FusedHit) (float64, bool)) []float64 {
	out := make([]float64, len(hits))
	switch strategy {
	case model.FusionMinMax:
		lo, hi, seen := 0.0, 0.0, false
		for _, h := range hits {
			v, ok := value(h)
			if !ok {
				continue
			}
			if !seen || v < lo {
				lo = v
			}
			if !seen || v > hi {
				hi = v
			}
			seen = true
		}
		for i, h := range hits {
			v, ok := value(h)
			switch {
			case !ok:
			case hi == lo:
				out[i] = 1
			default:
				out[i] = (v - lo) / (hi - lo)
			}
		}
	case model.FusionRRF:
		idx := make([]int, 0, len(hits))
		for i, h := range hits {
			if _, ok := value(h); ok {
				idx = append(idx, i)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool {
			va, _ := value(hits[idx[a]])
			vb, _ := value(hits[idx[b]])
			return va > vb
		})
		for pos, i := range idx {
			out[i] = float64(rrfK+1) / float64(rrfK+pos+1)
		}
	default:
		var hi float64
		for _, h := range hits {
			if v, ok := value(h); ok && v > hi {
				hi = v
			}
		}
		for i, h := range hits {
			if v, ok := value(h); ok && hi > 0 {
				out[i] = clamp01(v / hi)
			}
		}
	}
	return out
}
