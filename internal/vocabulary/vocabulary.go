// Package vocabulary holds the versioned word lists shared by the query
// classifier and the default skill extractor.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultYAML []byte

// Vocabulary is the parsed vocabulary file.
type Vocabulary struct {
	Version      int      `yaml:"version"`
	Roles        []string `yaml:"roles"`
	Seniority    []string `yaml:"seniority"`
	Skills       []string `yaml:"skills"`
	Connectors   []string `yaml:"connectors"`
	NamePrefixes []string `yaml:"name_prefixes"`
}

// Default returns the vocabulary compiled into the binary.
func Default() *Vocabulary {
	v, err := Parse(defaultYAML)
	if err != nil {
		panic("vocabulary: embedded file is invalid: " + err.Error())
	}
	return v
}

// Load reads a vocabulary override from path. An empty path returns Default.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

// Parse decodes and normalizes a vocabulary document. Keywords are trimmed
// and lower-cased, connectors keep their surrounding spaces and name prefixes
// keep their case.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if v.Version < 1 {
		return nil, fmt.Errorf("version must be >= 1, got %d", v.Version)
	}
	v.Roles = normalize(v.Roles, keyword)
	v.Seniority = normalize(v.Seniority, keyword)
	v.Skills = normalize(v.Skills, keyword)
	v.Connectors = normalize(v.Connectors, strings.ToLower)
	v.NamePrefixes = normalize(v.NamePrefixes, strings.TrimSpace)
	if len(v.Roles)+len(v.Seniority)+len(v.Skills) == 0 {
		return nil, fmt.Errorf("no keywords defined")
	}
	return &v, nil
}

// Keywords returns roles, seniority and skill words in one slice.
func (v *Vocabulary) Keywords() []string {
	out := make([]string, 0, len(v.Roles)+len(v.Seniority)+len(v.Skills))
	out = append(out, v.Roles...)
	out = append(out, v.Seniority...)
	out = append(out, v.Skills...)
	return out
}

func keyword(w string) string { return strings.ToLower(strings.TrimSpace(w)) }

func normalize(words []string, fn func(string) string) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = fn(w)
		if strings.TrimSpace(w) == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
