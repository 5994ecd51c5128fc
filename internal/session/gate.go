// Package session implements the gate deciding whether the user must set up
// an identity, log in, or may use the journal.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
)

type State int

const (
	NeedsSetup State = iota
	NeedsLogin
	Authenticated
)

func (s State) String() string {
	switch s {
	case NeedsSetup:
		return "needs_setup"
	case NeedsLogin:
		return "needs_login"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// IdentityStore is what the gate needs from the credential store.
type IdentityStore interface {
	HasIdentity(ctx context.Context) (bool, error)
	CreateIdentity(ctx context.Context, email string, password, confirm []byte) (*journal.Identity, error)
	Verify(ctx context.Context, password []byte) (string, error)
	Email(ctx context.Context) (string, error)
}

// Gate is the session context for one process. Authenticated is terminal:
// there is no logout, a new process starts over in NeedsLogin.
type Gate struct {
	mu     sync.RWMutex
	state  State
	email  string
	store  IdentityStore
	logger logging.Logger
}

// NewGate computes the initial state once: NeedsSetup when no identity is
// stored, NeedsLogin otherwise.
func NewGate(ctx context.Context, store IdentityStore, l logging.Logger) (*Gate, error) {
	has, err := store.HasIdentity(ctx)
	if err != nil {
		return nil, err
	}
	g := &Gate{store: store, logger: l.With("module", "session"), state: NeedsLogin}
	if !has {
		g.state = NeedsSetup
	}
	return g, nil
}

// State returns the current state and, when authenticated, the email.
func (g *Gate) State() (State, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state, g.email
}

func (g *Gate) IsAuthenticated() bool {
	s, _ := g.State()
	return s == Authenticated
}

// Account returns the stored email while the gate waits for a login, so the
// prompt can name the account. It is "" in NeedsSetup.
func (g *Gate) Account(ctx context.Context) (string, error) {
	g.mu.RLock()
	state, email := g.state, g.email
	g.mu.RUnlock()

	switch state {
	case Authenticated:
		return email, nil
	case NeedsLogin:
		return g.store.Email(ctx)
	default:
		return "", nil
	}
}

// Setup creates the identity and authenticates. Only valid in NeedsSetup.
func (g *Gate) Setup(ctx context.Context, email string, password, confirm []byte) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != NeedsSetup {
		return "", common.ErrAlreadySetUp
	}

	id, err := g.store.CreateIdentity(ctx, email, password, confirm)
	if err != nil {
		return "", err
	}

	g.state, g.email = Authenticated, id.Email
	g.logger.Info(ctx, "authenticated after setup", "email", id.Email)
	return id.Email, nil
}

// Login verifies password. From NeedsLogin it authenticates; when already
// authenticated it only re-verifies. In NeedsSetup it fails with
// common.ErrNotSetUp.
func (g *Gate) Login(ctx context.Context, password []byte) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == NeedsSetup {
		return "", common.ErrNotSetUp
	}

	email, err := g.store.Verify(ctx, password)
	if err != nil {
		g.logger.Warn(ctx, "login failed", "error", err)
		return "", err
	}

	if g.state == NeedsLogin {
		g.state, g.email = Authenticated, email
		g.logger.Info(ctx, "authenticated", "email", email)
	}
	return email, nil
}
