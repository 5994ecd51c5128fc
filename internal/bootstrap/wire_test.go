package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/rooznegar/internal/audio"
	"github.com/dmitrijs2005/rooznegar/internal/config"
	"github.com/dmitrijs2005/rooznegar/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDSN = filepath.Join(t.TempDir(), "data", "journal.db")
	return cfg
}

func TestBuild_WiresServices(t *testing.T) {
	var logs bytes.Buffer
	s, err := Build(context.Background(), testConfig(t), &logs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	state, _ := s.Gate.State()
	assert.Equal(t, session.NeedsSetup, state)
	assert.False(t, s.Archiver.Enabled())
	assert.Contains(t, logs.String(), "no Gemini API key")
	assert.True(t, s.Vocabulary.Contains("ترافیک"))

	// without a tagger entries are still saved
	e, err := s.Pipeline.Finish(context.Background(), "a@b.c", "سلام", 2)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, []string{}, e.Tags)

	list, err := s.Entries.List(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	r := s.Recorder(audio.StreamCapture{Stream: audio.NewStream()})
	assert.False(t, r.Active())
	assert.Equal(t, 16000, s.AudioConfig().SampleRate)
}

func TestBuild_ReopensExistingIdentity(t *testing.T) {
	cfg := testConfig(t)

	s, err := Build(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = s.Gate.Setup(context.Background(), "a@b.c", []byte("secret1"), []byte("secret1"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Build(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	state, _ := s.Gate.State()
	assert.Equal(t, session.NeedsLogin, state)
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = "oracle"

	_, err := Build(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestBuild_BadVocabulary(t *testing.T) {
	cfg := testConfig(t)
	cfg.VocabularyFile = filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(cfg.VocabularyFile, []byte("tags: []\n"), 0o600))

	_, err := Build(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestBuild_ArchiverFollowsConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.S3Bucket = "journal"

	s, err := Build(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.True(t, s.Archiver.Enabled())
}
