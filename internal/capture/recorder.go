package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/audio"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/dmitrijs2005/rooznegar/internal/transcription"
)

var ErrRecordingActive = errors.New("a recording is already in progress")

const (
	DefaultChunkSize    = 4096
	DefaultDrainTimeout = 3 * time.Second
)

type Config struct {
	Audio     audio.Config
	ChunkSize int
	// DrainTimeout bounds how long Stop waits for late transcript fragments
	// after the audio has ended.
	DrainTimeout time.Duration
}

type RecorderOption func(*Recorder)

// WithRecorderClock replaces time.Now for duration measurement.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// Recorder runs at most one Recording at a time.
type Recorder struct {
	capture  audio.Capture
	provider transcription.Provider
	cfg      Config
	logger   logging.Logger
	now      func() time.Time

	mu     sync.Mutex
	active *Recording
}

func NewRecorder(c audio.Capture, p transcription.Provider, cfg Config, l logging.Logger, opts ...RecorderOption) *Recorder {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = DefaultDrainTimeout
	}
	r := &Recorder{
		capture:  c,
		provider: p,
		cfg:      cfg,
		logger:   l.With("module", "recorder"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start opens a transcription session and an audio source and begins
// streaming. onFragment, if not nil, receives every transcript fragment as
// it arrives; it is called from a single goroutine.
func (r *Recorder) Start(ctx context.Context, onFragment func(string)) (*Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, ErrRecordingActive
	}

	recCtx, cancel := context.WithCancel(ctx)

	session, err := r.provider.StartStreaming(recCtx, transcription.StreamConfig{
		SampleRate: r.cfg.Audio.SampleRate,
		Channels:   r.cfg.Audio.Channels,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start transcription: %w", err)
	}

	source, err := r.capture.Start(recCtx, r.cfg.Audio)
	if err != nil {
		_ = session.Close()
		cancel()
		return nil, fmt.Errorf("failed to start audio capture: %w", err)
	}

	rec := &Recording{
		recorder:   r,
		cancel:     cancel,
		source:     source,
		session:    session,
		onFragment: onFragment,
		started:    r.now(),
		pumpDone:   make(chan struct{}),
		eventsDone: make(chan struct{}),
		logger:     r.logger,
	}
	r.active = rec

	go rec.consumeEvents()
	go rec.pump(r.cfg.ChunkSize)
	go func() {
		<-recCtx.Done()
		_ = source.Stop()
	}()

	r.logger.Info(ctx, "recording started")
	return rec, nil
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

func (r *Recorder) release(rec *Recording) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == rec {
		r.active = nil
	}
}

// Result is what a stopped recording produced.
type Result struct {
	Transcript string
	Duration   int // whole seconds
}

// Recording is one running capture. Stop or Abort must be called exactly
// once; later calls return the first outcome.
type Recording struct {
	recorder *Recorder
	cancel   context.CancelFunc
	source   audio.Source
	session  transcription.Session
	buffer   transcription.Buffer
	logger   logging.Logger

	onFragment func(string)
	started    time.Time

	pumpDone   chan struct{}
	eventsDone chan struct{}

	once   sync.Once
	result Result
}

// Stop ends the audio, lets the provider flush the remaining transcript for
// up to the drain timeout and releases every resource. Transcription
// failures are logged; whatever text arrived before them is returned.
func (rec *Recording) Stop() Result {
	rec.once.Do(func() {
		ctx := context.Background()
		r := rec.recorder

		if err := rec.source.Stop(); err != nil {
			rec.logger.Warn(ctx, "failed to stop audio capture cleanly", "error", err)
		}
		<-rec.pumpDone
		duration := int(r.now().Sub(rec.started) / time.Second)

		_ = rec.session.CloseSend()
		if err := waitForStream(rec.session, r.cfg.DrainTimeout); err != nil {
			rec.logger.Warn(ctx, "transcription ended with error", "error", err)
		}
		_ = rec.session.Close()
		<-rec.eventsDone
		rec.cancel()

		if duration < 0 {
			duration = 0
		}
		rec.result = Result{Transcript: rec.buffer.Final(), Duration: duration}
		r.release(rec)
		rec.logger.Info(ctx, "recording stopped", "duration", duration)
	})
	return rec.result
}

// Abort discards the recording without waiting for pending transcript.
func (rec *Recording) Abort() {
	rec.once.Do(func() {
		rec.cancel()
		_ = rec.source.Stop()
		_ = rec.session.Close()
		<-rec.pumpDone
		<-rec.eventsDone
		rec.recorder.release(rec)
		rec.logger.Info(context.Background(), "recording discarded")
	})
}

// Transcript returns the text received so far.
func (rec *Recording) Transcript() string {
	return rec.buffer.String()
}

func (rec *Recording) consumeEvents() {
	defer close(rec.eventsDone)

	for ev := range rec.session.Events() {
		switch ev.Kind {
		case transcription.EventTranscript:
			rec.buffer.Append(ev.Text)
			if rec.onFragment != nil && ev.Text != "" {
				rec.onFragment(ev.Text)
			}
		case transcription.EventError:
			rec.logger.Error(context.Background(), "transcription error", "error", ev.Err)
		}
	}
}

// pump copies audio into the session. Once the session stops accepting
// audio the rest of the source is discarded, so producers never block.
func (rec *Recording) pump(chunkSize int) {
	defer close(rec.pumpDone)

	buf := make([]byte, chunkSize)
	for {
		n, err := rec.source.Read(buf)
		if n > 0 {
			if sendErr := rec.session.SendAudio(buf[:n]); sendErr != nil {
				rec.logger.Warn(context.Background(), "failed to stream audio", "error", sendErr)
				_, _ = io.Copy(io.Discard, rec.source)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				rec.logger.Warn(context.Background(), "audio capture error", "error", err)
			}
			return
		}
	}
}

func waitForStream(session transcription.Session, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = session.Close()
		return <-done
	}
}
