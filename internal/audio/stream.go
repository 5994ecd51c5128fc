package audio

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrStreamStopped is returned by Write after Stop.
var ErrStreamStopped = errors.New("audio stream stopped")

// Stream is a Source fed by Write, e.g. PCM frames received from a browser.
// Write blocks until the frame has been read.
type Stream struct {
	r *io.PipeReader
	w *io.PipeWriter

	stopOnce sync.Once
}

func NewStream() *Stream {
	r, w := io.Pipe()
	return &Stream{r: r, w: w}
}

func (s *Stream) Write(frame []byte) (int, error) {
	n, err := s.w.Write(frame)
	if errors.Is(err, io.ErrClosedPipe) {
		return n, ErrStreamStopped
	}
	return n, err
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *Stream) Close() error {
	return s.Stop()
}

// Stop ends the stream; pending and later reads return io.EOF.
func (s *Stream) Stop() error {
	s.stopOnce.Do(func() {
		_ = s.w.Close()
	})
	return nil
}

// StreamCapture hands out a pre-built Stream, so a Recorder can be driven by
// network audio.
type StreamCapture struct {
	Stream *Stream
}

func (c StreamCapture) Start(_ context.Context, _ Config) (Source, error) {
	if c.Stream == nil {
		return nil, errors.New("no audio stream attached")
	}
	return c.Stream, nil
}
