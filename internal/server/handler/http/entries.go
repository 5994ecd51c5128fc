package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/entries"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
	"github.com/go-chi/chi/v5"
)

// EntryService is the entry store as seen by the API.
type EntryService interface {
	List(ctx context.Context, email string) ([]journal.Entry, error)
	Get(ctx context.Context, email, id string) (journal.Entry, error)
	Update(ctx context.Context, email string, e journal.Entry) error
	Delete(ctx context.Context, email, id string, confirm entries.Confirmer) error
	AddTag(ctx context.Context, email, id, tag string) (journal.Entry, error)
	RemoveTag(ctx context.Context, email, id, tag string, confirm entries.Confirmer) (journal.Entry, error)
}

// Archiver uploads an entry and returns the object key.
type Archiver interface {
	Enabled() bool
	Archive(ctx context.Context, email string, e journal.Entry) (string, error)
}

var errArchiveUnavailable = errors.New("archive is not configured")

type EntryHandler struct {
	Entries  EntryService
	Archiver Archiver
	Location *time.Location
	// Suggestions is the tag vocabulary offered when adding a tag.
	Suggestions []string
}

type updateRequest struct {
	Transcript *string  `json:"transcript"`
	Tags       []string `json:"tags"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

type archiveResponse struct {
	Key string `json:"key"`
}

// queryConfirm approves a destructive action when the request carries
// confirm=true.
func queryConfirm(r *http.Request) entries.Confirmer {
	return entries.ConfirmFunc(func(context.Context, string) bool {
		return r.URL.Query().Get("confirm") == "true"
	})
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Entries.List(r.Context(), EmailFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.Entries.Get(r.Context(), EmailFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Update replaces the transcript and/or the tag set of an entry. The id,
// creation time and duration never change.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := EmailFromContext(ctx)

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	e, err := h.Entries.Get(ctx, email, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Transcript != nil {
		e.Transcript = *req.Transcript
	}
	if req.Tags != nil {
		e.Tags = []string{}
		for _, t := range req.Tags {
			if e, err = journal.AddTag(e, t); err != nil {
				writeError(w, err)
				return
			}
		}
	}

	if err := h.Entries.Update(ctx, email, e); err != nil {
		writeError(w, err)
		return
	}

	// Update is a no-op for an id deleted since the read above
	stored, err := h.Entries.Get(ctx, email, e.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// Tags lists the tag suggestions.
func (h *EntryHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags := h.Suggestions
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Entries.Delete(r.Context(), EmailFromContext(r.Context()), chi.URLParam(r, "id"), queryConfirm(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTag adds one tag. A blank tag leaves the entry unchanged and is not an
// error; the current entry is returned.
func (h *EntryHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := EmailFromContext(ctx)
	id := chi.URLParam(r, "id")

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.ErrValidation)
		return
	}

	e, err := h.Entries.AddTag(ctx, email, id, req.Tag)
	if errors.Is(err, common.ErrEmptyTag) {
		e, err = h.Entries.Get(ctx, email, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EntryHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	e, err := h.Entries.RemoveTag(r.Context(), EmailFromContext(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "tag"), queryConfirm(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Export renders an entry as text (default), markdown or html.
func (h *EntryHandler) Export(w http.ResponseWriter, r *http.Request) {
	e, err := h.Entries.Get(r.Context(), EmailFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(journal.FormatText(e, h.Location)))
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(journal.FormatMarkdown(e, h.Location)))
	case "html":
		page, err := journal.FormatHTML(e, h.Location)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown format"})
	}
}

// Archive uploads the text export to the configured bucket.
func (h *EntryHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.Archiver == nil || !h.Archiver.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: errArchiveUnavailable.Error()})
		return
	}

	ctx := r.Context()
	email := EmailFromContext(ctx)

	e, err := h.Entries.Get(ctx, email, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	key, err := h.Archiver.Archive(ctx, email, e)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, archiveResponse{Key: key})
}
