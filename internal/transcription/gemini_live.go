package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/gorilla/websocket"
	"google.golang.org/genai"
)

const (
	DefaultLiveBaseURL = "wss://generativelanguage.googleapis.com/"
	DefaultAPIVersion  = "v1beta"
	DefaultLiveModel   = "gemini-2.5-flash-native-audio-preview-09-2025"

	defaultHandshakeTimeout = 10 * time.Second
)

// LiveConfig controls the Gemini Live connection.
type LiveConfig struct {
	APIKey           string
	BaseURL          string
	APIVersion       string
	Model            string
	HandshakeTimeout time.Duration
}

// GeminiLive implements Provider with the Gemini Live API. Only the input
// transcription is consumed; the model's own audio replies are ignored.
type GeminiLive struct {
	cfg LiveConfig
}

func NewGeminiLive(cfg LiveConfig) *GeminiLive {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultLiveBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLiveModel
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	return &GeminiLive{cfg: cfg}
}

func (p *GeminiLive) StartStreaming(ctx context.Context, cfg StreamConfig) (Session, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not configured", common.ErrService)
	}
	cfg = cfg.withDefaults()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    p.cfg.BaseURL,
			APIVersion: p.cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrService, err)
	}

	live, err := p.connect(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrService, err)
	}

	session := newLiveSession(live, fmt.Sprintf("audio/pcm;rate=%d", cfg.SampleRate))
	session.start(ctx)
	return session, nil
}

type connectResult struct {
	live *genai.Session
	err  error
}

// connect dials and waits for setupComplete, bounded by HandshakeTimeout and
// ctx. The SDK dial takes no context, so it runs on its own goroutine and a
// late connection is closed when nobody waits for it anymore.
func (p *GeminiLive) connect(ctx context.Context, client *genai.Client) (*genai.Session, error) {
	timer := time.NewTimer(p.cfg.HandshakeTimeout)
	defer timer.Stop()

	dialed := make(chan connectResult, 1)
	go func() {
		live, err := client.Live.Connect(ctx, p.cfg.Model, &genai.LiveConnectConfig{
			ResponseModalities:      []genai.Modality{genai.ModalityAudio},
			InputAudioTranscription: &genai.AudioTranscriptionConfig{},
		})
		dialed <- connectResult{live: live, err: err}
	}()

	var live *genai.Session
	select {
	case r := <-dialed:
		if r.err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini Live: %w", r.err)
		}
		live = r.live
	case <-ctx.Done():
		go closeLate(dialed)
		return nil, ctx.Err()
	case <-timer.C:
		go closeLate(dialed)
		return nil, errors.New("timed out connecting to Gemini Live")
	}

	acked := make(chan error, 1)
	go func() { acked <- awaitSetup(live) }()

	select {
	case err := <-acked:
		if err != nil {
			_ = live.Close()
			return nil, fmt.Errorf("setup not acknowledged: %w", err)
		}
		return live, nil
	case <-ctx.Done():
		_ = live.Close()
		<-acked
		return nil, ctx.Err()
	case <-timer.C:
		_ = live.Close()
		<-acked
		return nil, errors.New("setup not acknowledged in time")
	}
}

func closeLate(dialed <-chan connectResult) {
	if r := <-dialed; r.live != nil {
		_ = r.live.Close()
	}
}

func awaitSetup(live *genai.Session) error {
	for {
		msg, err := live.Receive()
		if err != nil {
			return err
		}
		if msg.SetupComplete != nil {
			return nil
		}
	}
}

// isNormalClose reports a provider close that ends the stream without
// failure. It unwraps, so wrapped read errors are recognised too.
func isNormalClose(err error) bool {
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
		return true
	default:
		return false
	}
}

type liveSession struct {
	live     *genai.Session
	mimeType string

	events   chan Event
	audio    chan []byte
	done     chan struct{}
	closing  chan struct{}
	readDone chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	closeSendOnce sync.Once
	closeOnce     sync.Once
	sendMu        sync.RWMutex
	sendClosed    bool
}

func newLiveSession(live *genai.Session, mimeType string) *liveSession {
	return &liveSession{
		live:     live,
		mimeType: mimeType,
		events:   make(chan Event, 64),
		audio:    make(chan []byte, 32),
		done:     make(chan struct{}),
		closing:  make(chan struct{}),
		readDone: make(chan struct{}),
	}
}

func (s *liveSession) start(ctx context.Context) {
	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()

	go func() {
		s.wg.Wait()
		s.emit(Event{Kind: EventClosed})
		close(s.events)
		close(s.done)
		_ = s.live.Close()
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
}

func (s *liveSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	// held across the send so CloseSend cannot close s.audio under us
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.sendClosed {
		return errors.New("audio stream is already closed")
	}
	if err := s.waitErr(); err != nil {
		return err
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.closing:
		return errors.New("session closed")
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return errors.New("session closed")
	}
}

func (s *liveSession) CloseSend() error {
	s.closeSendOnce.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		close(s.audio)
		s.sendMu.Unlock()
	})
	return nil
}

func (s *liveSession) Events() <-chan Event {
	return s.events
}

func (s *liveSession) Wait() error {
	<-s.done
	return s.waitErr()
}

func (s *liveSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)
		_ = s.CloseSend()
		_ = s.live.Close()
	})
	<-s.done
	return s.waitErr()
}

func (s *liveSession) isClosing() bool {
	select {
	case <-s.closing:
		return true
	default:
		return false
	}
}

func (s *liveSession) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// setErr records the first real failure and reports whether err counted.
// Normal close codes and errors caused by our own Close are ignored.
func (s *liveSession) setErr(err error) bool {
	if err == nil || s.isClosing() || isNormalClose(err) {
		return false
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
	return true
}

func (s *liveSession) writeLoop() {
	defer s.wg.Done()

	for chunk := range s.audio {
		err := s.live.SendRealtimeInput(genai.LiveRealtimeInput{
			Audio: &genai.Blob{Data: chunk, MIMEType: s.mimeType},
		})
		if err != nil {
			if s.setErr(fmt.Errorf("failed to send audio: %w", err)) {
				s.emit(Event{Kind: EventError, Err: err})
			}
			_ = s.live.Close()
			// drain so a blocked SendAudio can return
			for range s.audio {
			}
			return
		}
	}

	select {
	case <-s.closing:
		return
	case <-s.readDone:
		return
	default:
	}
	if err := s.live.SendRealtimeInput(genai.LiveRealtimeInput{AudioStreamEnd: true}); err != nil {
		s.setErr(fmt.Errorf("failed to end audio stream: %w", err))
	}
}

func (s *liveSession) readLoop() {
	defer s.wg.Done()
	// nothing can be sent once the provider side is gone
	defer s.CloseSend()
	defer close(s.readDone)

	for {
		msg, err := s.live.Receive()
		if err != nil {
			if s.setErr(fmt.Errorf("failed to read provider event: %w", err)) {
				s.emit(Event{Kind: EventError, Err: err})
			}
			_ = s.live.Close()
			return
		}

		if msg.ServerContent != nil && msg.ServerContent.InputTranscription != nil {
			if text := msg.ServerContent.InputTranscription.Text; text != "" {
				s.emit(Event{Kind: EventTranscript, Text: text})
			}
		}
	}
}

// emit blocks until the consumer takes ev or the session is closed.
func (s *liveSession) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.closing:
	}
}
