// Package capture turns a finished recording into a journal entry, and runs
// recordings: microphone or network audio pumped into a transcription session.
package capture

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
)

const DefaultTagTimeout = 15 * time.Second

type Tagger interface {
	Tags(ctx context.Context, text string) ([]string, error)
}

type EntryCreator interface {
	Create(ctx context.Context, email string, d journal.Draft) (journal.Entry, error)
}

// Pipeline saves finished transcripts. Tagging is best effort and never
// prevents the entry from being stored.
type Pipeline struct {
	tagger  Tagger
	entries EntryCreator
	timeout time.Duration
	logger  logging.Logger
}

// NewPipeline returns a pipeline. tagger may be nil, in which case every
// entry is saved without tags.
func NewPipeline(tagger Tagger, entries EntryCreator, timeout time.Duration, l logging.Logger) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTagTimeout
	}
	return &Pipeline{
		tagger:  tagger,
		entries: entries,
		timeout: timeout,
		logger:  l.With("module", "capture"),
	}
}

// Finish stores transcript as a new entry of email. A blank transcript is
// ignored and yields (nil, nil).
func (p *Pipeline) Finish(ctx context.Context, email, transcript string, duration int) (*journal.Entry, error) {
	if strings.TrimSpace(transcript) == "" {
		p.logger.Debug(ctx, "empty transcript, nothing saved")
		return nil, nil
	}

	tags := p.tags(ctx, transcript)

	e, err := p.entries.Create(ctx, email, journal.Draft{
		Duration:   duration,
		Transcript: transcript,
		Tags:       tags,
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (p *Pipeline) tags(ctx context.Context, transcript string) []string {
	if p.tagger == nil {
		return []string{}
	}

	tctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tags, err := p.tagger.Tags(tctx, transcript)
	if err != nil {
		p.logger.Warn(ctx, "tag derivation failed, saving without tags", "error", err)
		return []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}
