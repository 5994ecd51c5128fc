// Package entries keeps each identity's journal entries in the key-value
// store. The collection is persisted whole, newest first, on every change.
package entries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/dmitrijs2005/rooznegar/internal/kvstore"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/google/uuid"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed approves every prompt; used when the caller already asked, e.g.
// an HTTP request carrying confirm=true.
var Confirmed = ConfirmFunc(func(context.Context, string) bool { return true })

type Option func(*Store)

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store serializes all mutations. The in-memory view of a collection only
// changes after the new collection was written successfully.
type Store struct {
	mu     sync.Mutex
	kv     kvstore.Repository
	logger logging.Logger
	cache  map[string][]journal.Entry

	now   func() time.Time
	newID func() string
}

func NewStore(kv kvstore.Repository, l logging.Logger, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: l.With("module", "entries"),
		cache:  make(map[string][]journal.Entry),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads email's collection from storage, replacing any cached copy.
// Missing data yields an empty list; unparsable data is logged and also
// yields an empty list.
func (s *Store) Load(ctx context.Context, email string) ([]journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read(ctx, email)
	if err != nil {
		return nil, err
	}
	s.cache[email] = list
	return cloneAll(list), nil
}

// List returns the cached collection, loading it on first use.
func (s *Store) List(ctx context.Context, email string) ([]journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.collection(ctx, email)
	if err != nil {
		return nil, err
	}
	return cloneAll(list), nil
}

// Get returns one entry or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, email, id string) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.collection(ctx, email)
	if err != nil {
		return journal.Entry{}, err
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i].Clone(), nil
	}
	return journal.Entry{}, common.ErrNotFound
}

// Create assigns an id and creation time to d and prepends the entry.
func (s *Store) Create(ctx context.Context, email string, d journal.Draft) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.collection(ctx, email)
	if err != nil {
		return journal.Entry{}, err
	}

	id := s.newID()
	for indexOf(list, id) >= 0 {
		id = s.newID()
	}

	duration := d.Duration
	if duration < 0 {
		duration = 0
	}
	e := journal.Entry{
		ID:         id,
		CreatedAt:  s.now().UTC(),
		Duration:   duration,
		Transcript: d.Transcript,
		Tags:       append([]string{}, d.Tags...),
	}

	next := make([]journal.Entry, 0, len(list)+1)
	next = append(next, e)
	next = append(next, list...)

	if err := s.persist(ctx, email, next); err != nil {
		return journal.Entry{}, err
	}

	s.logger.Info(ctx, "entry created", "id", e.ID, "duration", e.Duration, "tags", len(e.Tags))
	return e.Clone(), nil
}

// Update replaces the stored entry with e.ID, keeping its creation time.
// It is a no-op when the id is absent.
func (s *Store) Update(ctx context.Context, email string, e journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.modify(ctx, email, e.ID, func(journal.Entry) (journal.Entry, error) {
		return e.Clone(), nil
	})
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}

// Delete removes the entry after confirm approves. It is a no-op when the id
// is absent. A declined confirmation returns common.ErrNotConfirmed.
func (s *Store) Delete(ctx context.Context, email, id string, confirm Confirmer) error {
	if !confirm.Confirm(ctx, "Delete this entry?") {
		return common.ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.collection(ctx, email)
	if err != nil {
		return err
	}
	i := indexOf(list, id)
	if i < 0 {
		return nil
	}

	next := make([]journal.Entry, 0, len(list)-1)
	next = append(next, list[:i]...)
	next = append(next, list[i+1:]...)
	if err := s.persist(ctx, email, next); err != nil {
		return err
	}

	s.logger.Info(ctx, "entry deleted", "id", id)
	return nil
}

// AddTag adds tag to the stored entry and persists it. Validation errors
// come from journal.AddTag.
func (s *Store) AddTag(ctx context.Context, email, id, tag string) (journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.modify(ctx, email, id, func(e journal.Entry) (journal.Entry, error) {
		return journal.AddTag(e, tag)
	})
}

// RemoveTag removes every occurrence of tag after confirm approves.
//
// The confirmation runs without holding s.mu, so the entry may change or
// vanish while the user decides. modify resolves id again under the lock
// and the call then fails with common.ErrNotFound.
func (s *Store) RemoveTag(ctx context.Context, email, id, tag string, confirm Confirmer) (journal.Entry, error) {
	if _, err := s.Get(ctx, email, id); err != nil {
		return journal.Entry{}, err
	}
	if !confirm.Confirm(ctx, fmt.Sprintf("Remove tag %q?", tag)) {
		return journal.Entry{}, common.ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.modify(ctx, email, id, func(e journal.Entry) (journal.Entry, error) {
		return journal.RemoveTag(e, tag), nil
	})
}

// modify applies fn to the entry with id and persists the result. The
// creation time always comes from the stored entry. Callers hold s.mu.
func (s *Store) modify(ctx context.Context, email, id string, fn func(journal.Entry) (journal.Entry, error)) (journal.Entry, error) {
	list, err := s.collection(ctx, email)
	if err != nil {
		return journal.Entry{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return journal.Entry{}, common.ErrNotFound
	}

	updated, err := fn(list[i].Clone())
	if err != nil {
		return journal.Entry{}, err
	}
	updated.ID = list[i].ID
	updated.CreatedAt = list[i].CreatedAt
	if updated.Duration < 0 {
		updated.Duration = 0
	}

	next := cloneAll(list)
	next[i] = updated
	if err := s.persist(ctx, email, next); err != nil {
		return journal.Entry{}, err
	}
	return updated.Clone(), nil
}

// collection returns the cached list, reading it from storage on a miss.
// Callers hold s.mu.
func (s *Store) collection(ctx context.Context, email string) ([]journal.Entry, error) {
	if list, ok := s.cache[email]; ok {
		return list, nil
	}
	list, err := s.read(ctx, email)
	if err != nil {
		return nil, err
	}
	s.cache[email] = list
	return list, nil
}

func (s *Store) read(ctx context.Context, email string) ([]journal.Entry, error) {
	raw, ok, err := s.kv.Get(ctx, journal.EntriesKey(email))
	if err != nil {
		s.logger.Error(ctx, "failed to read entries", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if !ok || raw == "" {
		return []journal.Entry{}, nil
	}

	var list []journal.Entry
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Error(ctx, "stored entries are unreadable, starting empty", "error", err)
		return []journal.Entry{}, nil
	}
	for i := range list {
		if list[i].Tags == nil {
			list[i].Tags = []string{}
		}
	}
	return list, nil
}

// persist writes next and, only on success, makes it the cached collection.
// An empty collection removes the key instead, which reads back as no entries.
func (s *Store) persist(ctx context.Context, email string, next []journal.Entry) error {
	key := journal.EntriesKey(email)
	if len(next) == 0 {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Error(ctx, "failed to clear entries", "error", err)
			return fmt.Errorf("%w: %w", common.ErrStorage, err)
		}
		s.cache[email] = []journal.Entry{}
		return nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: encode entries: %w", common.ErrStorage, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.logger.Error(ctx, "failed to persist entries", "error", err, "count", len(next))
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	s.cache[email] = next
	return nil
}

func indexOf(list []journal.Entry, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(list []journal.Entry) []journal.Entry {
	out := make([]journal.Entry, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}
