// Package journal holds the journal's data model: the local identity, journal
// entries and the pure operations on them (tag editing, text export).
package journal

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/common"
)

// Storage keys. The entry key embeds the identity's email so every identity
// owns a separate collection.
const (
	EmailKey          = "rooznegar-user-email"
	PasswordHashKey   = "rooznegar-password-hash"
	entriesKeyPrefix  = "rooznegar-entries-"
	MinPasswordLength = 6
)

// EntriesKey returns the storage key of email's entry collection.
func EntriesKey(email string) string {
	return entriesKeyPrefix + email
}

// Identity is the single local account of the device.
type Identity struct {
	Email        string
	PasswordHash string
}

// Entry is one recorded journal entry. JSON names match the stored format.
type Entry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Duration   int       `json:"duration"` // seconds
	Transcript string    `json:"transcript"`
	Tags       []string  `json:"tags"`
}

// Draft is an entry before the store assigns its id and creation time.
type Draft struct {
	Duration   int
	Transcript string
	Tags       []string
}

// Clone returns a copy of e that shares no slice with it.
func (e Entry) Clone() Entry {
	e.Tags = append([]string(nil), e.Tags...)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e
}

// HasTag reports whether tag is in the entry's tag set.
func (e Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag returns a copy of e with tag appended. The tag is trimmed first;
// a blank tag fails with common.ErrEmptyTag and a tag already present fails
// with common.ErrDuplicateTag. On error e is returned unchanged.
func AddTag(e Entry, tag string) (Entry, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return e, common.ErrEmptyTag
	}
	if e.HasTag(tag) {
		return e, common.ErrDuplicateTag
	}
	out := e.Clone()
	out.Tags = append(out.Tags, tag)
	return out, nil
}

// RemoveTag returns a copy of e without any occurrence of tag. The match is
// exact; no trimming is applied.
func RemoveTag(e Entry, tag string) Entry {
	out := e.Clone()
	kept := out.Tags[:0]
	for _, t := range out.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	out.Tags = kept
	return out
}

// Snippet shortens a transcript for list views.
func Snippet(transcript string, limit int) string {
	r := []rune(transcript)
	if len(r) <= limit {
		return transcript
	}
	return string(r[:limit]) + "..."
}
