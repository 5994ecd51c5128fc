package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/rooznegar/internal/flagx"
	"github.com/dmitrijs2005/rooznegar/internal/timex"
)

// JsonConfig is the on-disk shape of a config file. Durations accept both
// "15s" and integer nanoseconds.
type JsonConfig struct {
	StorageDriver    string         `json:"storage_driver"`
	StorageDSN       string         `json:"storage_dsn"`
	HTTPAddr         string         `json:"http_addr"`
	HealthAddr       string         `json:"health_addr"`
	GeminiAPIKey     string         `json:"gemini_api_key"`
	GeminiBaseURL    string         `json:"gemini_base_url"`
	GeminiAPIVersion string         `json:"gemini_api_version"`
	TagModel         string         `json:"tag_model"`
	TagTimeout       timex.Duration `json:"tag_timeout"`
	LiveBaseURL      string         `json:"live_base_url"`
	LiveModel        string         `json:"live_model"`
	VocabularyFile   string         `json:"vocabulary_file"`
	FFmpegCommand    string         `json:"ffmpeg_command"`
	AudioInputFormat string         `json:"audio_input_format"`
	AudioInputDevice string         `json:"audio_input_device"`
	DrainTimeout     timex.Duration `json:"drain_timeout"`
	TimeZone         string         `json:"time_zone"`
	LogBackend       string         `json:"log_backend"`
	LogFormat        string         `json:"log_format"`
	LogLevel         string         `json:"log_level"`
	LogFile          string         `json:"log_file"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field it sets into config. It panics if the file cannot be read or parsed.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.JsonConfigFlags(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.StorageDSN, c.StorageDSN)
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.HealthAddr, c.HealthAddr)
	setString(&config.GeminiAPIKey, c.GeminiAPIKey)
	setString(&config.GeminiBaseURL, c.GeminiBaseURL)
	setString(&config.GeminiAPIVersion, c.GeminiAPIVersion)
	setString(&config.TagModel, c.TagModel)
	setString(&config.LiveBaseURL, c.LiveBaseURL)
	setString(&config.LiveModel, c.LiveModel)
	setString(&config.VocabularyFile, c.VocabularyFile)
	setString(&config.FFmpegCommand, c.FFmpegCommand)
	setString(&config.AudioInputFormat, c.AudioInputFormat)
	setString(&config.AudioInputDevice, c.AudioInputDevice)
	setString(&config.TimeZone, c.TimeZone)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFile, c.LogFile)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)

	if c.TagTimeout.Duration > 0 {
		config.TagTimeout = c.TagTimeout.Duration
	}
	if c.DrainTimeout.Duration > 0 {
		config.DrainTimeout = c.DrainTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
