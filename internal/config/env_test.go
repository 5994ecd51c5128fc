package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Run("reads secrets from the environment", func(t *testing.T) {
		t.Setenv(EnvGeminiAPIKey, "g-key")
		t.Setenv(EnvS3AccessKey, "ak")
		t.Setenv(EnvS3SecretKey, "sk")
		t.Setenv(EnvStorageDSN, "")

		cfg := &Config{StorageDSN: "keep.db"}
		parseEnv(cfg, []string{"-env", filepath.Join(t.TempDir(), "missing.env")})

		assert.Equal(t, "g-key", cfg.GeminiAPIKey)
		assert.Equal(t, "ak", cfg.S3AccessKey)
		assert.Equal(t, "sk", cfg.S3SecretKey)
		assert.Equal(t, "keep.db", cfg.StorageDSN)
	})

	t.Run("loads a dotenv file", func(t *testing.T) {
		// t.Setenv registers the restore; the empty value lets godotenv set it
		t.Setenv(EnvS3AccessKey, "")
		require.NoError(t, os.Unsetenv(EnvS3AccessKey))
		t.Setenv(EnvGeminiAPIKey, "already-set")

		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("S3_ACCESS_KEY=from-file\nGEMINI_API_KEY=from-file\n"), 0o600))

		cfg := &Config{}
		parseEnv(cfg, []string{"-env", path})

		assert.Equal(t, "from-file", cfg.S3AccessKey)
		assert.Equal(t, "already-set", cfg.GeminiAPIKey)
	})
}
