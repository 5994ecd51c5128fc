package capture

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/rooznegar/internal/audio"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/transcription"
)

type fakeSession struct {
	mu             sync.Mutex
	received       []byte
	sendErr        error
	waitErr        error
	closeSendCalls int
	closeCalls     int
	finishOnEnd    bool

	events   chan transcription.Event
	finished chan struct{}
	once     sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		events:   make(chan transcription.Event, 16),
		finished: make(chan struct{}),
	}
}

func (s *fakeSession) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.received = append(s.received, chunk...)
	return nil
}

func (s *fakeSession) CloseSend() error {
	s.mu.Lock()
	s.closeSendCalls++
	finish := s.finishOnEnd
	s.mu.Unlock()
	if finish {
		s.finish()
	}
	return nil
}

func (s *fakeSession) Events() <-chan transcription.Event { return s.events }

func (s *fakeSession) Wait() error {
	<-s.finished
	return s.waitErr
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	s.closeCalls++
	s.mu.Unlock()
	s.finish()
	return nil
}

func (s *fakeSession) finish() {
	s.once.Do(func() {
		s.events <- transcription.Event{Kind: transcription.EventClosed}
		close(s.events)
		close(s.finished)
	})
}

func (s *fakeSession) bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.received...)
}

func (s *fakeSession) closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

type fakeProvider struct {
	session *fakeSession
	err     error
	cfg     transcription.StreamConfig
}

func (p *fakeProvider) StartStreaming(_ context.Context, cfg transcription.StreamConfig) (transcription.Session, error) {
	p.cfg = cfg
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

type failingCapture struct{}

func (failingCapture) Start(context.Context, audio.Config) (audio.Source, error) {
	return nil, errors.New("no microphone")
}

type fakeTagger struct {
	tags        []string
	err         error
	gotText     string
	hadDeadline bool
}

func (t *fakeTagger) Tags(ctx context.Context, text string) ([]string, error) {
	t.gotText = text
	_, t.hadDeadline = ctx.Deadline()
	return t.tags, t.err
}

type fakeCreator struct {
	calls []journal.Draft
	email string
	err   error
}

func (c *fakeCreator) Create(_ context.Context, email string, d journal.Draft) (journal.Entry, error) {
	c.calls = append(c.calls, d)
	c.email = email
	if c.err != nil {
		return journal.Entry{}, c.err
	}
	return journal.Entry{ID: "id-1", Duration: d.Duration, Transcript: d.Transcript, Tags: d.Tags}, nil
}
