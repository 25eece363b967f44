package search

import (
	"slices"
	"sort"
	"strings"
	"unicode"

	"jobmate/search-service/internal/model"
)

// Tokenize lower-cases term and splits it into alphanumeric tokens, the same
// way the 'simple' text search parser splits indexed names. Duplicates are
// dropped; order is kept.
func Tokenize(term string) []string {
	fields := strings.FieldsFunc(strings.ToLower(term), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// BuildPrefixQuery converts term into a conjunctive prefix tsquery, e.g.
// "john smith" becomes "john:* & smith:*". It returns "" when the term has no
// usable tokens.
func BuildPrefixQuery(term string) (string, []string) {
	tokens := Tokenize(term)
	if len(tokens) == 0 {
		return "", nil
	}
	units := make([]string, len(tokens))
	for i, t := range tokens {
		units[i] = t + ":*"
	}
	return strings.Join(units, " & "), tokens
}

// FilterSponsorship keeps the results allowed by f. The index stores already
// apply the filter in SQL; this is used for in-memory result sets.
func FilterSponsorship(results []model.SearchResult, f model.SponsorshipFilter) []model.SearchResult {
	out := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		if f.Allows(r.NeedsSponsorship) {
			out = append(out, r)
		}
	}
	return out
}

// SortResults orders by score descending, then last name, first name and
// candidate id ascending.
func SortResults(results []model.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.CandidateID < b.CandidateID
	})
}

// Paginate returns the page of results starting at offset.
func Paginate(results []model.SearchResult, offset, limit int) []model.SearchResult {
	if offset >= len(results) {
		return []model.SearchResult{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

// matchedSkills returns the candidate skills sharing a token with the query.
func matchedSkills(tokens []string, skills []string) []string {
	var out []string
	for _, skill := range skills {
		for _, st := range Tokenize(skill) {
			if slices.Contains(tokens, st) {
				out = append(out, skill)
				break
			}
		}
	}
	return out
}

// mergeTerms unions term lists case-insensitively, keeping the first
// spelling seen.
func mergeTerms(lists ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, l := range lists {
		for _, t := range l {
			key := strings.ToLower(t)
			if !seen[key] {
				seen[key] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func toResult(c model.IndexedCandidate, score float64, matched []string, strategy string) model.SearchResult {
	if matched == nil {
		matched = []string{}
	}
	return model.SearchResult{
		CandidateID:      c.CandidateID,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Headline:         c.Headline,
		Location:         c.Location,
		NeedsSponsorship: c.NeedsSponsorship,
		Score:            clamp01(score),
		MatchedTerms:     matched,
		Strategy:         strategy,
	}
}
