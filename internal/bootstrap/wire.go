// Package bootstrap assembles the runtime graph shared by the CLI and the
// server from a loaded configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/rooznegar/internal/audio"
	"github.com/dmitrijs2005/rooznegar/internal/capture"
	"github.com/dmitrijs2005/rooznegar/internal/config"
	"github.com/dmitrijs2005/rooznegar/internal/credentials"
	"github.com/dmitrijs2005/rooznegar/internal/entries"
	"github.com/dmitrijs2005/rooznegar/internal/export"
	"github.com/dmitrijs2005/rooznegar/internal/filex"
	"github.com/dmitrijs2005/rooznegar/internal/kvstore"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/dmitrijs2005/rooznegar/internal/session"
	"github.com/dmitrijs2005/rooznegar/internal/tagging"
	"github.com/dmitrijs2005/rooznegar/internal/transcription"
)

// Services is the assembled runtime graph.
type Services struct {
	Config      *config.Config
	Logger      logging.Logger
	Storage     *kvstore.SQLRepository
	Credentials *credentials.Store
	Gate        *session.Gate
	Entries     *entries.Store
	Vocabulary  tagging.Vocabulary
	Transcriber transcription.Provider
	Pipeline    *capture.Pipeline
	Archiver    *export.Archiver

	closers []func() error
}

// Build wires all dependencies. logOut receives log output besides the
// optional log file; nil means stderr.
func Build(ctx context.Context, cfg *config.Config, logOut io.Writer) (*Services, error) {
	if err := filex.EnsureParentDir(cfg.LogFile); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	logger, closeLog, err := logging.New(logging.Options{
		Backend: cfg.LogBackend,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Output:  logOut,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	s := &Services{Config: cfg, Logger: logger, closers: []func() error{closeLog}}

	if d, _ := kvstore.DialectFor(cfg.StorageDriver); d.Name == kvstore.SQLite.Name {
		if err := filex.EnsureParentDir(cfg.StorageDSN); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("storage dir: %w", err)
		}
	}
	s.Storage, err = kvstore.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	s.closers = append(s.closers, s.Storage.Close)

	s.Vocabulary, err = tagging.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Credentials = credentials.NewStore(s.Storage, logger)
	s.Gate, err = session.NewGate(ctx, s.Credentials, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Entries = entries.NewStore(s.Storage, logger)

	// without a key every call would fail; save entries untagged instead
	var tagger capture.Tagger
	if cfg.GeminiAPIKey != "" {
		tagger = tagging.NewClient(tagging.Config{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			Model:      cfg.TagModel,
			Timeout:    cfg.TagTimeout,
		}, s.Vocabulary, logger)
	} else {
		logger.Warn(ctx, "no Gemini API key configured; transcription and tagging are unavailable")
	}
	s.Pipeline = capture.NewPipeline(tagger, s.Entries, cfg.TagTimeout, logger)

	s.Transcriber = transcription.NewGeminiLive(transcription.LiveConfig{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.LiveBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		Model:      cfg.LiveModel,
	})

	s.Archiver = export.NewArchiver(export.Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3BaseEndpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, cfg.Location(), logger)

	return s, nil
}

// Recorder returns a recorder reading from c.
func (s *Services) Recorder(c audio.Capture) *capture.Recorder {
	return capture.NewRecorder(c, s.Transcriber, capture.Config{
		Audio:        s.AudioConfig(),
		DrainTimeout: s.Config.DrainTimeout,
	}, s.Logger)
}

// MicrophoneRecorder returns a recorder capturing through ffmpeg.
func (s *Services) MicrophoneRecorder() *capture.Recorder {
	return s.Recorder(audio.NewFFMPEGCapture(s.Config.FFmpegCommand))
}

func (s *Services) AudioConfig() audio.Config {
	return audio.Config{
		SampleRate:  16000,
		Channels:    1,
		InputFormat: s.Config.AudioInputFormat,
		InputDevice: s.Config.AudioInputDevice,
	}
}

// Close releases storage and flushes logs, in reverse order of creation.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
