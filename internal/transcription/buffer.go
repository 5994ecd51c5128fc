package transcription

import (
	"strings"
	"sync"
)

// Buffer accumulates fragments of one recording. Only the recording that
// owns it appends; String may be called from any goroutine.
type Buffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (b *Buffer) Append(fragment string) {
	if fragment == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.b.WriteString(fragment)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Final returns the accumulated text with surrounding whitespace removed.
func (b *Buffer) Final() string {
	return strings.TrimSpace(b.String())
}
