// Package config handles configuration for both the rooznegar CLI and the
// rooznegard server: defaults, a JSON overlay, environment secrets and
// command-line flags, applied in that order.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings.
//
// Fields:
//   - StorageDriver / StorageDSN: "sqlite" (file path) or "pgx" (PostgreSQL DSN).
//   - HTTPAddr / HealthAddr: bind addresses of the HTTP API and the gRPC health service.
//   - GeminiAPIKey: key for both tag derivation and live transcription; read from GEMINI_API_KEY.
//   - GeminiBaseURL / GeminiAPIVersion / TagModel / TagTimeout: the generateContent endpoint used for tags.
//   - LiveBaseURL / LiveModel: the streaming transcription endpoint; shares GeminiAPIVersion.
//   - DrainTimeout: how long a stopped recording waits for late transcript.
//   - S3*: archive bucket; the keys are read from S3_ACCESS_KEY / S3_SECRET_KEY.
type Config struct {
	StorageDriver string
	StorageDSN    string

	HTTPAddr   string
	HealthAddr string

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string
	TagModel         string
	TagTimeout       time.Duration
	LiveBaseURL      string
	LiveModel        string
	VocabularyFile   string

	FFmpegCommand    string
	AudioInputFormat string
	AudioInputDevice string
	DrainTimeout     time.Duration

	TimeZone string

	LogBackend string
	LogFormat  string
	LogLevel   string
	LogFile    string

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = "sqlite"
	c.StorageDSN = "rooznegar.db"
	// loopback only: setup and login must not be reachable from the network
	c.HTTPAddr = "127.0.0.1:8080"
	c.HealthAddr = "127.0.0.1:50051"
	c.GeminiBaseURL = "https://generativelanguage.googleapis.com/"
	c.GeminiAPIVersion = "v1beta"
	c.TagModel = "gemini-2.5-flash"
	c.TagTimeout = 15 * time.Second
	c.LiveBaseURL = "wss://generativelanguage.googleapis.com/"
	c.LiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"
	c.FFmpegCommand = "ffmpeg"
	c.AudioInputFormat = "pulse"
	c.AudioInputDevice = "default"
	c.DrainTimeout = 3 * time.Second
	c.TimeZone = "Asia/Tehran"
	c.LogBackend = "slog"
	c.LogFormat = "text"
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// Location resolves TimeZone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig builds a Config from os.Args and the environment.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional JSON file, the environment (after loading .env) and finally args.
// It panics on an unreadable config file or malformed flags.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
