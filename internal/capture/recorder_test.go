package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/audio"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/dmitrijs2005/rooznegar/internal/transcription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type steppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func newTestRecorder(stream *audio.Stream, provider transcription.Provider, opts ...RecorderOption) *Recorder {
	cfg := Config{DrainTimeout: 50 * time.Millisecond}
	return NewRecorder(audio.StreamCapture{Stream: stream}, provider, cfg, logging.NewNop(), opts...)
}

func TestRecorder_StreamsAudioAndCollectsTranscript(t *testing.T) {
	session := newFakeSession()
	session.finishOnEnd = true
	stream := audio.NewStream()
	clock := &steppingClock{t: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), step: 65 * time.Second}
	r := newTestRecorder(stream, &fakeProvider{session: session}, WithRecorderClock(clock.Now))

	var mu sync.Mutex
	var fragments []string
	rec, err := r.Start(context.Background(), func(s string) {
		mu.Lock()
		fragments = append(fragments, s)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.True(t, r.Active())

	_, err = stream.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	session.events <- transcription.Event{Kind: transcription.EventTranscript, Text: "سلام "}
	session.events <- transcription.Event{Kind: transcription.EventTranscript, Text: "دنیا "}
	assert.Eventually(t, func() bool { return rec.Transcript() == "سلام دنیا " }, time.Second, 5*time.Millisecond)

	res := rec.Stop()
	assert.Equal(t, "سلام دنیا", res.Transcript)
	assert.Equal(t, 65, res.Duration)
	assert.Equal(t, []byte{1, 2, 3, 4}, session.bytes())
	assert.Equal(t, []string{"سلام ", "دنیا "}, fragments)
	assert.False(t, r.Active())

	// second Stop returns the same result
	assert.Equal(t, res, rec.Stop())
}

func TestRecorder_OnlyOneRecordingAtATime(t *testing.T) {
	session := newFakeSession()
	session.finishOnEnd = true
	r := newTestRecorder(audio.NewStream(), &fakeProvider{session: session})

	rec, err := r.Start(context.Background(), nil)
	require.NoError(t, err)

	_, err = r.Start(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRecordingActive)

	rec.Stop()
	assert.False(t, r.Active())
}

func TestRecorder_StopDrainsForBoundedTime(t *testing.T) {
	// the session never finishes by itself after CloseSend
	session := newFakeSession()
	r := newTestRecorder(audio.NewStream(), &fakeProvider{session: session})

	rec, err := r.Start(context.Background(), nil)
	require.NoError(t, err)

	start := time.Now()
	res := rec.Stop()
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "", res.Transcript)
	assert.GreaterOrEqual(t, session.closed(), 1)
}

func TestRecorder_SessionErrorStillReleasesEverything(t *testing.T) {
	session := newFakeSession()
	session.sendErr = errors.New("socket gone")
	session.waitErr = errors.New("socket gone")
	stream := audio.NewStream()
	r := newTestRecorder(stream, &fakeProvider{session: session})

	rec, err := r.Start(context.Background(), nil)
	require.NoError(t, err)

	session.events <- transcription.Event{Kind: transcription.EventTranscript, Text: "نیمه"}
	session.events <- transcription.Event{Kind: transcription.EventError, Err: errors.New("socket gone")}

	// writes keep flowing after the session refused audio
	for i := 0; i < 3; i++ {
		_, err := stream.Write([]byte{9, 9})
		require.NoError(t, err)
	}
	assert.Eventually(t, func() bool { return rec.Transcript() == "نیمه" }, time.Second, 5*time.Millisecond)

	res := rec.Stop()
	assert.Equal(t, "نیمه", res.Transcript)
	assert.GreaterOrEqual(t, session.closed(), 1)

	_, err = stream.Write([]byte{1})
	assert.ErrorIs(t, err, audio.ErrStreamStopped)
	assert.False(t, r.Active())
}

func TestRecorder_Abort(t *testing.T) {
	session := newFakeSession()
	stream := audio.NewStream()
	r := newTestRecorder(stream, &fakeProvider{session: session})

	rec, err := r.Start(context.Background(), nil)
	require.NoError(t, err)

	rec.Abort()
	assert.False(t, r.Active())
	assert.GreaterOrEqual(t, session.closed(), 1)

	_, err = stream.Write([]byte{1})
	assert.ErrorIs(t, err, audio.ErrStreamStopped)

	// Stop after Abort is a no-op
	assert.Equal(t, Result{}, rec.Stop())
}

func TestRecorder_ContextCancelStopsSource(t *testing.T) {
	session := newFakeSession()
	session.finishOnEnd = true
	stream := audio.NewStream()
	r := newTestRecorder(stream, &fakeProvider{session: session})

	ctx, cancel := context.WithCancel(context.Background())
	rec, err := r.Start(ctx, nil)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		_, err := stream.Write([]byte{1})
		return errors.Is(err, audio.ErrStreamStopped)
	}, time.Second, 5*time.Millisecond)

	rec.Stop()
	assert.False(t, r.Active())
}

func TestRecorder_ProviderFailure(t *testing.T) {
	r := newTestRecorder(audio.NewStream(), &fakeProvider{err: errors.New("no key")})

	_, err := r.Start(context.Background(), nil)
	require.Error(t, err)
	assert.False(t, r.Active())
}

func TestRecorder_CaptureFailureClosesSession(t *testing.T) {
	session := newFakeSession()
	provider := &fakeProvider{session: session}
	r := NewRecorder(failingCapture{}, provider, Config{Audio: audio.Config{SampleRate: 16000, Channels: 1}}, logging.NewNop())

	_, err := r.Start(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, session.closed())
	assert.False(t, r.Active())
	assert.Equal(t, 16000, provider.cfg.SampleRate)
}

func TestNewRecorder_Defaults(t *testing.T) {
	r := NewRecorder(failingCapture{}, &fakeProvider{}, Config{ChunkSize: 10}, logging.NewNop())
	assert.Equal(t, DefaultChunkSize, r.cfg.ChunkSize)
	assert.Equal(t, DefaultDrainTimeout, r.cfg.DrainTimeout)
}
