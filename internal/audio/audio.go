// Package audio provides 16 kHz mono s16le PCM sources: a microphone captured
// through ffmpeg, and a push-fed stream for audio arriving over the network.
package audio

import (
	"context"
	"io"
)

// Config describes how audio should be captured.
type Config struct {
	SampleRate  int
	Channels    int
	InputFormat string // ffmpeg input format, e.g. pulse, alsa, avfoundation
	InputDevice string
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	if c.InputFormat == "" {
		c.InputFormat = "pulse"
	}
	if c.InputDevice == "" {
		c.InputDevice = "default"
	}
	return c
}

// Source is a live audio source. Read returns io.EOF after Stop.
type Source interface {
	io.ReadCloser
	Stop() error
}

// Capture opens sources.
type Capture interface {
	Start(ctx context.Context, cfg Config) (Source, error)
}
