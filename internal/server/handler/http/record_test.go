package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/audio"
	"github.com/dmitrijs2005/rooznegar/internal/capture"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/dmitrijs2005/rooznegar/internal/transcription"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoSession turns every audio chunk into one transcript fragment.
type echoSession struct {
	fragment string
	events   chan transcription.Event
	done     chan struct{}
	once     sync.Once

	mu     sync.Mutex
	closed bool
}

func newEchoSession(fragment string) *echoSession {
	return &echoSession{
		fragment: fragment,
		events:   make(chan transcription.Event, 64),
		done:     make(chan struct{}),
	}
}

func (s *echoSession) SendAudio([]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("closed")
	}
	if s.fragment != "" {
		s.events <- transcription.Event{Kind: transcription.EventTranscript, Text: s.fragment}
	}
	return nil
}

func (s *echoSession) CloseSend() error { s.finish(); return nil }
func (s *echoSession) Close() error     { s.finish(); return nil }

func (s *echoSession) Events() <-chan transcription.Event { return s.events }

func (s *echoSession) Wait() error {
	<-s.done
	return nil
}

func (s *echoSession) finish() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.events)
		close(s.done)
	})
}

type echoProvider struct {
	fragment string
	err      error
}

func (p echoProvider) StartStreaming(context.Context, transcription.StreamConfig) (transcription.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	return newEchoSession(p.fragment), nil
}

type recordingFinisher struct {
	mu         sync.Mutex
	transcript string
	email      string
	entry      *journal.Entry
	err        error
}

func (f *recordingFinisher) Finish(_ context.Context, email, transcript string, duration int) (*journal.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email, f.transcript = email, transcript
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, nil
	}
	e := &journal.Entry{ID: "rec-1", Transcript: transcript, Duration: duration, Tags: []string{}}
	f.entry = e
	return e, nil
}

func recorders(p transcription.Provider) RecorderFactory {
	return func(c audio.Capture) *capture.Recorder {
		return capture.NewRecorder(c, p, capture.Config{DrainTimeout: 50 * time.Millisecond}, logging.NewNop())
	}
}

func dialRecord(t *testing.T, api *testAPI, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(api.srv.URL, "http") + "/ws/record?token=" + token
	return websocket.DefaultDialer.Dial(u, nil)
}

func readUntil(t *testing.T, conn *websocket.Conn, kind string) (serverMessage, []serverMessage) {
	t.Helper()
	var seen []serverMessage
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var m serverMessage
		require.NoError(t, conn.ReadJSON(&m))
		if m.Type == kind {
			return m, seen
		}
		seen = append(seen, m)
	}
}

func TestRecord_SavesTranscript(t *testing.T) {
	fin := &recordingFinisher{}
	api := newTestAPI(t, recorders(echoProvider{fragment: "سلام "}), fin)
	token := api.setup(t)

	conn, _, err := dialRecord(t, api, token)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	first, _ := readUntil(t, conn, "transcript")
	assert.Equal(t, "سلام ", first.Text)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop"}`)))

	saved, _ := readUntil(t, conn, "saved")
	require.NotNil(t, saved.Entry)
	assert.Equal(t, "rec-1", saved.Entry.ID)
	assert.Equal(t, "سلام سلام", saved.Entry.Transcript)
	assert.Equal(t, "driver@example.com", fin.email)
}

func TestRecord_SilenceIsDiscarded(t *testing.T) {
	fin := &recordingFinisher{}
	api := newTestAPI(t, recorders(echoProvider{}), fin)
	token := api.setup(t)

	conn, _, err := dialRecord(t, api, token)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop"}`)))

	readUntil(t, conn, "discarded")
	assert.Nil(t, fin.entry)
}

func TestRecord_ProviderFailure(t *testing.T) {
	api := newTestAPI(t, recorders(echoProvider{err: errors.New("no api key")}), &recordingFinisher{})
	token := api.setup(t)

	conn, _, err := dialRecord(t, api, token)
	require.NoError(t, err)
	defer conn.Close()

	m, _ := readUntil(t, conn, "error")
	assert.Equal(t, "recording unavailable", m.Error)
}

func TestRecord_RejectsBadToken(t *testing.T) {
	api := newTestAPI(t, recorders(echoProvider{}), &recordingFinisher{})

	_, resp, err := dialRecord(t, api, "nope")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRecord_DisconnectDiscardsWithoutSaving(t *testing.T) {
	fin := &recordingFinisher{}
	api := newTestAPI(t, recorders(echoProvider{fragment: "x"}), fin)
	token := api.setup(t)

	conn, _, err := dialRecord(t, api, token)
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	readUntil(t, conn, "transcript")
	require.NoError(t, conn.Close())

	time.Sleep(100 * time.Millisecond)
	fin.mu.Lock()
	defer fin.mu.Unlock()
	assert.Empty(t, fin.email)
}
