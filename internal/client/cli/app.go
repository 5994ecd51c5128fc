// Package cli is the interactive terminal front-end of the journal: a
// setup/login gate followed by a REPL for recording and managing entries.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/bootstrap"
	"github.com/dmitrijs2005/rooznegar/internal/capture"
	"github.com/dmitrijs2005/rooznegar/internal/entries"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/session"
)

// Gate is the session gate.
type Gate interface {
	State() (session.State, string)
	IsAuthenticated() bool
	Account(ctx context.Context) (string, error)
	Setup(ctx context.Context, email string, password, confirm []byte) (string, error)
	Login(ctx context.Context, password []byte) (string, error)
}

type EntryService interface {
	List(ctx context.Context, email string) ([]journal.Entry, error)
	Get(ctx context.Context, email, id string) (journal.Entry, error)
	Update(ctx context.Context, email string, e journal.Entry) error
	Delete(ctx context.Context, email, id string, confirm entries.Confirmer) error
	AddTag(ctx context.Context, email, id, tag string) (journal.Entry, error)
	RemoveTag(ctx context.Context, email, id, tag string, confirm entries.Confirmer) (journal.Entry, error)
}

// Recording is a running capture.
type Recording interface {
	Stop() capture.Result
	Abort()
}

// StartFunc begins a recording; onFragment receives live transcript.
type StartFunc func(ctx context.Context, onFragment func(string)) (Recording, error)

type Finisher interface {
	Finish(ctx context.Context, email, transcript string, duration int) (*journal.Entry, error)
}

type Archiver interface {
	Enabled() bool
	Archive(ctx context.Context, email string, e journal.Entry) (string, error)
}

type App struct {
	gate           Gate
	entries        EntryService
	startRecording StartFunc
	pipeline       Finisher
	archiver       Archiver
	suggestions    []string
	loc            *time.Location

	reader *bufio.Reader
	out    io.Writer
	email  string
}

func NewApp(s *bootstrap.Services) *App {
	recorder := s.MicrophoneRecorder()
	return &App{
		gate:    s.Gate,
		entries: s.Entries,
		startRecording: func(ctx context.Context, onFragment func(string)) (Recording, error) {
			rec, err := recorder.Start(ctx, onFragment)
			if err != nil {
				return nil, err
			}
			return rec, nil
		},
		pipeline:    s.Pipeline,
		archiver:    s.Archiver,
		suggestions: s.Vocabulary.Tags(),
		loc:         s.Config.Location(),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
}

func (a *App) Run(ctx context.Context) error {
	return a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.gate.IsAuthenticated() && a.email != ""
}
