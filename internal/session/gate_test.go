package session

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/credentials"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/kvstore"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCredentials(t *testing.T) *credentials.Store {
	t.Helper()
	kv, err := kvstore.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return credentials.NewStore(kv, logging.NewNop())
}

func TestNewGate_FreshDeviceNeedsSetup(t *testing.T) {
	g, err := NewGate(context.Background(), newCredentials(t), logging.NewNop())
	require.NoError(t, err)

	st, email := g.State()
	assert.Equal(t, NeedsSetup, st)
	assert.Empty(t, email)

	account, err := g.Account(context.Background())
	require.NoError(t, err)
	assert.Empty(t, account)
}

func TestGate_SetupAuthenticates(t *testing.T) {
	ctx := context.Background()
	g, err := NewGate(ctx, newCredentials(t), logging.NewNop())
	require.NoError(t, err)

	email, err := g.Setup(ctx, "a@b.com", []byte("abcdef"), []byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	st, got := g.State()
	assert.Equal(t, Authenticated, st)
	assert.Equal(t, "a@b.com", got)
	assert.True(t, g.IsAuthenticated())

	_, err = g.Setup(ctx, "x@y.com", []byte("abcdef"), []byte("abcdef"))
	require.ErrorIs(t, err, common.ErrAlreadySetUp)
}

func TestGate_SetupFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	g, err := NewGate(ctx, newCredentials(t), logging.NewNop())
	require.NoError(t, err)

	_, err = g.Setup(ctx, "a@b.com", []byte("abcdef"), []byte("xxxxxx"))
	require.ErrorIs(t, err, common.ErrPasswordMismatch)

	st, _ := g.State()
	assert.Equal(t, NeedsSetup, st)

	_, err = g.Login(ctx, []byte("abcdef"))
	require.ErrorIs(t, err, common.ErrNotSetUp)
}

func TestGate_ExistingIdentityNeedsLogin(t *testing.T) {
	ctx := context.Background()
	creds := newCredentials(t)
	_, err := creds.CreateIdentity(ctx, "a@b.com", []byte("abcdef"), []byte("abcdef"))
	require.NoError(t, err)

	g, err := NewGate(ctx, creds, logging.NewNop())
	require.NoError(t, err)
	st, _ := g.State()
	require.Equal(t, NeedsLogin, st)
	assert.False(t, g.IsAuthenticated())

	account, err := g.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", account)

	_, err = g.Login(ctx, []byte("wrong!"))
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	st, _ = g.State()
	assert.Equal(t, NeedsLogin, st, "failed login must not transition")

	_, err = g.Setup(ctx, "x@y.com", []byte("abcdef"), []byte("abcdef"))
	require.ErrorIs(t, err, common.ErrAlreadySetUp)

	email, err := g.Login(ctx, []byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)
	st, _ = g.State()
	assert.Equal(t, Authenticated, st)
}

func TestGate_LoginWhenAuthenticatedReverifies(t *testing.T) {
	ctx := context.Background()
	g, err := NewGate(ctx, newCredentials(t), logging.NewNop())
	require.NoError(t, err)
	_, err = g.Setup(ctx, "a@b.com", []byte("abcdef"), []byte("abcdef"))
	require.NoError(t, err)

	_, err = g.Login(ctx, []byte("nope!!"))
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.True(t, g.IsAuthenticated(), "authenticated is terminal")

	email, err := g.Login(ctx, []byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)
}

type brokenStore struct{}

func (brokenStore) HasIdentity(context.Context) (bool, error) {
	return false, errors.New("disk gone")
}
func (brokenStore) CreateIdentity(context.Context, string, []byte, []byte) (*journal.Identity, error) {
	return nil, nil
}
func (brokenStore) Verify(context.Context, []byte) (string, error) { return "", nil }
func (brokenStore) Email(context.Context) (string, error) { return "", nil }

func TestNewGate_StorageError(t *testing.T) {
	_, err := NewGate(context.Background(), brokenStore{}, logging.NewNop())
	require.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "needs_setup", NeedsSetup.String())
	assert.Equal(t, "needs_login", NeedsLogin.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unknown", State(42).String())
}
