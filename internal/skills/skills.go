// Package skills provides the skill extraction collaborators used by the
// indexing pipeline.
package skills

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"jobmate/search-service/internal/vocabulary"
)

// Extractor returns the skills mentioned in free text, sorted and unique.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// VocabularyExtractor matches the vocabulary's skill list as whole words.
type VocabularyExtractor struct {
	patterns []skillPattern
}

type skillPattern struct {
	skill string
	re    *regexp.Regexp
}

// NewVocabularyExtractor compiles a matcher per skill. A nil vocabulary uses
// the embedded default.
func NewVocabularyExtractor(v *vocabulary.Vocabulary) *VocabularyExtractor {
	if v == nil {
		v = vocabulary.Default()
	}
	patterns := make([]skillPattern, 0, len(v.Skills))
	for _, s := range v.Skills {
		patterns = append(patterns, skillPattern{
			skill: s,
			re:    regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}+#.])` + regexp.QuoteMeta(s) + `(?:$|[^\p{L}\p{N}+#])`),
		})
	}
	return &VocabularyExtractor{patterns: patterns}
}

// Extract implements Extractor. It never fails.
func (e *VocabularyExtractor) Extract(_ context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	found := make([]string, 0)
	for _, p := range e.patterns {
		if p.re.MatchString(text) {
			found = append(found, p.skill)
		}
	}
	return normalize(found), nil
}

// normalize trims, dedupes case-insensitively and sorts skill names.
func normalize(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
