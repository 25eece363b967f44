// Package classifier maps a raw search term to a concrete search mode.
//
// Rules, evaluated in order:
//
//  1. empty or whitespace-only term         → semantic
//  2. proper-name shape                     → nameMatch
//  3. contains a role/skill/seniority word  → semantic
//  4. three or more tokens, or a connector  → semantic
//  5. anything else                         → semantic
//
// The classifier never fails; ambiguous input always lands on semantic.
package classifier

import (
	"regexp"
	"strings"

	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/vocabulary"
)

// Reason explains which rule produced a classification.
type Reason string

const (
	ReasonEmpty       Reason = "empty"
	ReasonNameShape   Reason = "name_shape"
	ReasonKeyword     Reason = "keyword"
	ReasonDescriptive Reason = "descriptive"
	ReasonDefault     Reason = "default"
)

// Classification is the detected mode plus the rule that fired.
type Classification struct {
	Mode    model.Mode
	Reason  Reason
	Keyword string // matched vocabulary word when Reason is keyword
}

const capitalized = `\p{Lu}\p{Ll}+`

var (
	plainWord  = regexp.MustCompile(`^` + capitalized + `$`)
	initial    = regexp.MustCompile(`^\p{Lu}\.?$`)
	singleWord = regexp.MustCompile(`^\p{Lu}\p{Ll}{2,}$`)
)

// Classifier is safe for concurrent use; it holds no mutable state.
type Classifier struct {
	vocab        *vocabulary.Vocabulary
	keywords     []string
	prefixedWord *regexp.Regexp
}

// New builds a classifier over v. A nil vocabulary means the embedded default.
func New(v *vocabulary.Vocabulary) *Classifier {
	if v == nil {
		v = vocabulary.Default()
	}
	c := &Classifier{vocab: v, keywords: v.Keywords()}
	if len(v.NamePrefixes) > 0 {
		quoted := make([]string, len(v.NamePrefixes))
		for i, p := range v.NamePrefixes {
			quoted[i] = regexp.QuoteMeta(p)
		}
		c.prefixedWord = regexp.MustCompile(`^(?:` + strings.Join(quoted, "|") + `)` + capitalized + `$`)
	}
	return c
}

// VocabularyVersion is the version of the word lists in use.
func (c *Classifier) VocabularyVersion() int { return c.vocab.Version }

// Classify returns the concrete mode for term.
func (c *Classifier) Classify(term string) model.Mode {
	return c.Explain(term).Mode
}

// Explain classifies term and reports the deciding rule.
func (c *Classifier) Explain(term string) Classification {
	tokens := strings.Fields(term)
	if len(tokens) == 0 {
		return Classification{Mode: model.ModeSemantic, Reason: ReasonEmpty}
	}
	if c.IsNameShape(term) {
		return Classification{Mode: model.ModeNameMatch, Reason: ReasonNameShape}
	}
	if kw, ok := c.MatchKeyword(term); ok {
		return Classification{Mode: model.ModeSemantic, Reason: ReasonKeyword, Keyword: kw}
	}
	if c.IsDescriptive(term) {
		return Classification{Mode: model.ModeSemantic, Reason: ReasonDescriptive}
	}
	return Classification{Mode: model.ModeSemantic, Reason: ReasonDefault}
}

// IsNameShape reports whether term looks like a person's name: two or three
// capitalized words, a single capitalized word of at least three letters, or
// two or three words where one carries a surname prefix (O'Brien, McDonald,
// DeLuca) and the rest are capitalized. Within two or three words a single
// capital, optionally followed by a period, counts as an initial
// ("John A Smith", "Mary J. Blige"), but at least one word must be spelled
// out. All-caps words are never a name shape.
func (c *Classifier) IsNameShape(term string) bool {
	tokens := strings.Fields(term)
	switch len(tokens) {
	case 1:
		return singleWord.MatchString(tokens[0])
	case 2, 3:
		words := 0
		for _, tok := range tokens {
			switch {
			case plainWord.MatchString(tok):
				words++
			case c.prefixedWord != nil && c.prefixedWord.MatchString(tok):
				words++
			case initial.MatchString(tok):
			default:
				return false
			}
		}
		return words > 0
	}
	return false
}

// MatchKeyword returns the first vocabulary word contained in the
// lower-cased term.
func (c *Classifier) MatchKeyword(term string) (string, bool) {
	lower := strings.ToLower(term)
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// IsDescriptive reports whether term reads like a description rather than a
// lookup: three or more tokens, or a connector phrase such as " and ".
func (c *Classifier) IsDescriptive(term string) bool {
	tokens := strings.Fields(term)
	if len(tokens) >= 3 {
		return true
	}
	lower := " " + strings.ToLower(strings.Join(tokens, " ")) + " "
	for _, conn := range c.vocab.Connectors {
		if strings.Contains(lower, conn) {
			return true
		}
	}
	return false
}
