package vocabulary_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/search-service/internal/vocabulary"
)

func TestDefault(t *testing.T) {
	v := vocabulary.Default()

	assert.GreaterOrEqual(t, v.Version, 1)
	assert.Contains(t, v.Roles, "developer")
	assert.Contains(t, v.Roles, "engineer")
	assert.Contains(t, v.Roles, "architect")
	assert.Contains(t, v.Skills, "java")
	assert.Contains(t, v.Skills, "python")
	assert.Contains(t, v.Skills, "aws")
	assert.Contains(t, v.Skills, "docker")
	assert.Contains(t, v.Seniority, "senior")
	assert.Contains(t, v.Seniority, "lead")
	assert.Contains(t, v.Connectors, " and ")
	assert.Contains(t, v.NamePrefixes, "O'")
	assert.Contains(t, v.NamePrefixes, "Mc")
}

func TestParse_Normalizes(t *testing.T) {
	v, err := vocabulary.Parse([]byte(`
version: 2
roles: ["  Developer ", developer, ""]
skills: [GoLang]
connectors: [" WITH "]
name_prefixes: [" Mc "]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"developer"}, v.Roles)
	assert.Equal(t, []string{"golang"}, v.Skills)
	assert.Equal(t, []string{" with "}, v.Connectors)
	assert.Equal(t, []string{"Mc"}, v.NamePrefixes)
	assert.Equal(t, []string{"developer", "golang"}, v.Keywords())
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing version": "roles: [developer]",
		"no keywords":     "version: 1\nconnectors: [' and ']",
		"bad yaml":        "version: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := vocabulary.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	v, err := vocabulary.Load("")
	require.NoError(t, err)
	assert.Equal(t, vocabulary.Default().Version, v.Version)

	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 9\nskills: [elixir]\n"), 0o600))

	v, err = vocabulary.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, v.Version)
	assert.Equal(t, []string{"elixir"}, v.Skills)

	_, err = vocabulary.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
