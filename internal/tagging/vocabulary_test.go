package tagging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVocabulary_TrimsAndDedupes(t *testing.T) {
	v := NewVocabulary([]string{" a ", "b", "a", "", "  "})
	assert.Equal(t, []string{"a", "b"}, v.Tags())
	assert.True(t, v.Contains("a"))
	assert.False(t, v.Contains(" a "))
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "tags.yaml")
	require.NoError(t, os.WriteFile(good, []byte("tags:\n  - ترافیک\n  - بار\n"), 0o600))
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("tags: []\n"), 0o600))
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("tags: [\n"), 0o600))

	v, err := LoadVocabulary(good)
	require.NoError(t, err)
	assert.Equal(t, []string{"ترافیک", "بار"}, v.Tags())

	v, err = LoadVocabulary("")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultVocabulary), v.Len())

	for _, p := range []string{empty, broken, filepath.Join(dir, "missing.yaml")} {
		_, err := LoadVocabulary(p)
		assert.Error(t, err, p)
	}
}
