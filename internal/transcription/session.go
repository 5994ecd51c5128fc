// Package transcription streams audio to a speech-to-text service. A session
// is a cancellable subscription: audio goes in through SendAudio, events come
// out of a single channel, and Close releases everything.
package transcription

import "context"

type EventKind int

const (
	// EventTranscript carries a fragment of recognised text.
	EventTranscript EventKind = iota
	// EventError reports a provider or transport failure. The session is
	// torn down after it; there is no retry.
	EventError
	// EventClosed is the last event before the channel is closed.
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventTranscript:
		return "transcript"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// StreamConfig describes the PCM audio sent to the provider.
type StreamConfig struct {
	SampleRate int
	Channels   int
}

func (c StreamConfig) withDefaults() StreamConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	return c
}

// Session is an open streaming transcription.
//
// Events has exactly one consumer. Wait blocks until the provider side has
// finished. Close is idempotent and blocks until all session goroutines exit.
type Session interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan Event
	Wait() error
	Close() error
}

// Provider opens sessions.
type Provider interface {
	StartStreaming(ctx context.Context, cfg StreamConfig) (Session, error)
}
