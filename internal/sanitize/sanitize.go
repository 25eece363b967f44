// Package sanitize redacts personally identifying information from profile
// text before it is indexed or sent to the embedding provider.
package sanitize

import (
	"regexp"
	"strings"
)

// Placeholders substituted for redacted spans.
const (
	Email      = "[EMAIL]"
	Phone      = "[PHONE]"
	PostalCode = "[POSTAL_CODE]"
	Name       = "[NAME]"
	Address    = "[ADDRESS]"
)

var (
	emailRe = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	// candidate spans; a span is only a phone number if it has 10-15 digits
	phoneRe   = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{7,}\d`)
	postalRes = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`),                  // US ZIP
		regexp.MustCompile(`\b[A-Z]{1,2}\d[A-Z\d]?\s?\d[A-Z]{2}\b`), // UK
		regexp.MustCompile(`\b[A-Z]\d[A-Z]\s?\d[A-Z]\d\b`),          // CA
	}
)

// Sanitizer removes PII from text given the candidate's known identifying
// fields.
type Sanitizer interface {
	Sanitize(text, knownName, knownEmail, knownAddress string) string
}

// PatternSanitizer redacts pattern-based PII (emails, phone numbers, postal
// codes) plus literal occurrences of the candidate's own name, email and
// address. It is stateless and safe for concurrent use.
type PatternSanitizer struct{}

// New returns a PatternSanitizer.
func New() *PatternSanitizer { return &PatternSanitizer{} }

// Sanitize implements Sanitizer. Literal fields are matched
// case-insensitively; the address goes first so its postal code is not
// redacted separately.
func (PatternSanitizer) Sanitize(text, knownName, knownEmail, knownAddress string) string {
	if text == "" {
		return ""
	}
	text = replaceLiteral(text, knownAddress, Address)
	text = replaceLiteral(text, knownEmail, Email)
	text = emailRe.ReplaceAllString(text, Email)
	text = phoneRe.ReplaceAllStringFunc(text, func(span string) string {
		if n := countDigits(span); n >= 10 && n <= 15 {
			return Phone
		}
		return span
	})
	for _, re := range postalRes {
		text = re.ReplaceAllString(text, PostalCode)
	}
	text = replaceLiteral(text, knownName, Name)
	for _, part := range strings.Fields(knownName) {
		text = replaceWord(text, part, Name)
	}
	return text
}

func replaceLiteral(text, literal, placeholder string) string {
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(literal))
	return re.ReplaceAllLiteralString(text, placeholder)
}

// replaceWord replaces whole-word occurrences of word. Single letters are
// left alone.
func replaceWord(text, word, placeholder string) string {
	word = strings.Trim(word, ".,")
	if len([]rune(word)) < 2 {
		return text
	}
	re := regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(word) + `($|[^\p{L}\p{N}])`)
	// adjacent matches share a delimiter, so a second pass catches the rest
	for i := 0; i < 2; i++ {
		text = re.ReplaceAllString(text, "${1}"+placeholder+"${2}")
	}
	return text
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
