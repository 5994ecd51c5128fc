// Package credentials stores the device's single local identity: an email in
// clear text and a one-way password hash.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/cryptox"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/kvstore"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
)

type Store struct {
	kv     kvstore.Repository
	logger logging.Logger
}

func NewStore(kv kvstore.Repository, l logging.Logger) *Store {
	return &Store{kv: kv, logger: l.With("module", "credentials")}
}

// HasIdentity reports whether both the email and the password hash are stored.
func (s *Store) HasIdentity(ctx context.Context) (bool, error) {
	id, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return id != nil, nil
}

// CreateIdentity validates the setup form and stores the identity. Checks run
// in order: all fields present, passwords match, password long enough.
// Nothing is written when validation fails.
func (s *Store) CreateIdentity(ctx context.Context, email string, password, confirm []byte) (*journal.Identity, error) {
	email = strings.TrimSpace(email)

	if email == "" || len(password) == 0 || len(confirm) == 0 {
		return nil, common.ErrMissingFields
	}
	if string(password) != string(confirm) {
		return nil, common.ErrPasswordMismatch
	}
	if utf8.RuneCount(password) < journal.MinPasswordLength {
		return nil, common.ErrPasswordTooShort
	}

	id := &journal.Identity{Email: email, PasswordHash: cryptox.HashPassword(password)}

	err := s.kv.SetAll(ctx,
		kvstore.Pair{Key: journal.EmailKey, Value: id.Email},
		kvstore.Pair{Key: journal.PasswordHashKey, Value: id.PasswordHash},
	)
	if err != nil {
		s.logger.Error(ctx, "failed to store identity", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	s.logger.Info(ctx, "identity created", "email", id.Email)
	return id, nil
}

// Verify checks password against the stored hash and returns the identity's
// email on success.
func (s *Store) Verify(ctx context.Context, password []byte) (string, error) {
	id, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if id == nil {
		return "", common.ErrNotSetUp
	}

	ok, err := cryptox.VerifyPassword(password, id.PasswordHash)
	if err != nil {
		if errors.Is(err, cryptox.ErrMalformedHash) {
			s.logger.Warn(ctx, "stored password hash is malformed")
			return "", common.ErrInvalidCredentials
		}
		return "", err
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}
	return id.Email, nil
}

// Email returns the stored email, or "" when no identity exists.
func (s *Store) Email(ctx context.Context) (string, error) {
	id, err := s.load(ctx)
	if err != nil || id == nil {
		return "", err
	}
	return id.Email, nil
}

// load returns nil when either half of the identity is missing.
func (s *Store) load(ctx context.Context) (*journal.Identity, error) {
	email, ok, err := s.kv.Get(ctx, journal.EmailKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if !ok || email == "" {
		return nil, nil
	}

	hash, ok, err := s.kv.Get(ctx, journal.PasswordHashKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if !ok || hash == "" {
		return nil, nil
	}

	return &journal.Identity{Email: email, PasswordHash: hash}, nil
}
