package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/flagx"
)

var knownFlags = []string{
	"-driver", "-d", "-a", "-g", "-k", "-m", "-t", "-vocab",
	"-ffmpeg", "-input-format", "-input", "-drain", "-tz",
	"-log-backend", "-log-format", "-l", "-log-file",
	"-b", "-r", "-e",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-driver string        storage driver: sqlite or pgx
//	-d string             storage DSN (sqlite file or PostgreSQL DSN)
//	-a string             HTTP API bind address
//	-g string             gRPC health bind address
//	-k string             Gemini API key
//	-m string             tag model
//	-t int                tag timeout, seconds
//	-vocab string         YAML vocabulary file
//	-ffmpeg string        ffmpeg binary
//	-input-format string  ffmpeg input format
//	-input string         ffmpeg input device
//	-drain int            transcript drain timeout, milliseconds
//	-tz string            time zone for exported dates
//	-log-backend string   slog or zap
//	-log-format string    text or json
//	-l string             log level
//	-log-file string      rotate logs into this file
//	-b string             S3 bucket
//	-r string             S3 region
//	-e string             S3 base endpoint
//
// Arguments not listed above are ignored, so a flag set can be shared with
// the -c and -env loaders.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("rooznegar", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.StorageDriver, "driver", config.StorageDriver, "storage driver")
	fs.StringVar(&config.StorageDSN, "d", config.StorageDSN, "storage DSN")
	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address")
	fs.StringVar(&config.HealthAddr, "g", config.HealthAddr, "gRPC health address")
	fs.StringVar(&config.GeminiAPIKey, "k", config.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&config.TagModel, "m", config.TagModel, "tag model")
	tagTimeout := fs.Int("t", int(config.TagTimeout/time.Second), "tag timeout (in seconds)")
	fs.StringVar(&config.VocabularyFile, "vocab", config.VocabularyFile, "vocabulary file")
	fs.StringVar(&config.FFmpegCommand, "ffmpeg", config.FFmpegCommand, "ffmpeg command")
	fs.StringVar(&config.AudioInputFormat, "input-format", config.AudioInputFormat, "ffmpeg input format")
	fs.StringVar(&config.AudioInputDevice, "input", config.AudioInputDevice, "ffmpeg input device")
	drain := fs.Int("drain", int(config.DrainTimeout/time.Millisecond), "drain timeout (in milliseconds)")
	fs.StringVar(&config.TimeZone, "tz", config.TimeZone, "time zone")
	fs.StringVar(&config.LogBackend, "log-backend", config.LogBackend, "log backend")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "log-file", config.LogFile, "log file")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TagTimeout = time.Duration(*tagTimeout) * time.Second
	config.DrainTimeout = time.Duration(*drain) * time.Millisecond
}
