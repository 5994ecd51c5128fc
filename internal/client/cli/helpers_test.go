package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/capture"
	"github.com/dmitrijs2005/rooznegar/internal/credentials"
	"github.com/dmitrijs2005/rooznegar/internal/entries"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/kvstore"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/dmitrijs2005/rooznegar/internal/session"
	"github.com/stretchr/testify/require"
)

const testEmail = "driver@example.com"

type testApp struct {
	*App
	kv    *kvstore.SQLRepository
	store *entries.Store
	gate  *session.Gate
	buf   *bytes.Buffer
}

// newTestApp wires the CLI to an in-memory sqlite store. input is what the
// user types.
func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	ctx := context.Background()

	kv, err := kvstore.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	l := logging.NewNop()
	gate, err := session.NewGate(ctx, credentials.NewStore(kv, l), l)
	require.NoError(t, err)

	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	store := entries.NewStore(kv, l, entries.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	buf := &bytes.Buffer{}
	return &testApp{
		App: &App{
			gate:     gate,
			entries:  store,
			pipeline: capture.NewPipeline(nil, store, time.Second, l),
			loc:      time.UTC,
			reader:   bufio.NewReader(strings.NewReader(input)),
			out:      buf,
		},
		kv:    kv,
		store: store,
		gate:  gate,
		buf:   buf,
	}
}

// login sets up the identity directly so tests start authenticated.
func (a *testApp) login(t *testing.T) {
	t.Helper()
	email, err := a.gate.Setup(context.Background(), testEmail, []byte("secret1"), []byte("secret1"))
	require.NoError(t, err)
	a.email = email
}

// restart simulates a new process over the same storage.
func (a *testApp) restart(t *testing.T) {
	t.Helper()
	l := logging.NewNop()
	gate, err := session.NewGate(context.Background(), credentials.NewStore(a.kv, l), l)
	require.NoError(t, err)
	a.gate = gate
	a.App.gate = gate
	a.email = ""
}

func (a *testApp) add(t *testing.T, transcript string, tags ...string) journal.Entry {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	e, err := a.store.Create(context.Background(), a.email, journal.Draft{Duration: 65, Transcript: transcript, Tags: tags})
	require.NoError(t, err)
	return e
}

func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if i >= len(pws) {
			return nil, io.EOF
		}
		pw := []byte(pws[i])
		i++
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}
