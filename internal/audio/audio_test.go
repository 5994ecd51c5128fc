package audio

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs_Defaults(t *testing.T) {
	got := Args(Config{})
	assert.Equal(t, []string{
		"-nostdin", "-hide_banner", "-loglevel", "warning",
		"-f", "pulse", "-i", "default",
		"-ac", "1", "-ar", "16000",
		"-f", "s16le", "-",
	}, got)
}

func TestArgs_Custom(t *testing.T) {
	got := Args(Config{SampleRate: 8000, Channels: 2, InputFormat: "alsa", InputDevice: "hw:0"})
	assert.Contains(t, got, "alsa")
	assert.Contains(t, got, "hw:0")
	assert.Contains(t, got, "8000")
	assert.Contains(t, got, "2")
}

func TestNewFFMPEGCapture_DefaultCommand(t *testing.T) {
	assert.Equal(t, "ffmpeg", NewFFMPEGCapture("").command)
	assert.Equal(t, "/usr/bin/ffmpeg", NewFFMPEGCapture("/usr/bin/ffmpeg").command)
}

func TestFFMPEGCapture_MissingBinary(t *testing.T) {
	c := NewFFMPEGCapture("rooznegar-no-such-binary")
	_, err := c.Start(context.Background(), Config{})
	require.Error(t, err)
}

func TestNormalizeStopErr(t *testing.T) {
	assert.NoError(t, normalizeStopErr(nil))
	assert.NoError(t, normalizeStopErr(&exec.ExitError{}))

	boom := errors.New("boom")
	assert.ErrorIs(t, normalizeStopErr(boom), boom)
}

func TestStream_WriteReadStop(t *testing.T) {
	s := NewStream()

	go func() {
		_, _ = s.Write([]byte{1, 2, 3})
		_ = s.Stop()
	}()

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestStream_WriteAfterStop(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	_, err := s.Write([]byte{1})
	assert.ErrorIs(t, err, ErrStreamStopped)

	buf := make([]byte, 4)
	_, err = s.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_StopUnblocksReader(t *testing.T) {
	s := NewStream()
	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 4)
		_, err := s.Read(buf)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("reader was not released")
	}
}

func TestStreamCapture(t *testing.T) {
	_, err := StreamCapture{}.Start(context.Background(), Config{})
	require.Error(t, err)

	s := NewStream()
	src, err := StreamCapture{Stream: s}.Start(context.Background(), Config{})
	require.NoError(t, err)
	assert.Same(t, s, src)
}
