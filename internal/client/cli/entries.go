package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/journal"
)

const snippetLength = 60

// List prints entries newest first with their position, which other
// commands accept instead of the id.
func (a *App) List(ctx context.Context) error {
	list, err := a.entries.List(ctx, a.email)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		dimColor.Fprintln(a.out, "No entries yet. Type 'record' to add one.")
		return nil
	}

	for i, e := range list {
		fmt.Fprintf(a.out, "%3d. %s  %s  ", i+1, journal.FormatDate(e.CreatedAt, a.loc), journal.FormatDuration(e.Duration))
		tagColor.Fprintln(a.out, journal.FormatTags(e.Tags))
		dimColor.Fprintf(a.out, "     %s\n", journal.Snippet(e.Transcript, snippetLength))
	}
	return nil
}

// Show prints one entry in full.
func (a *App) Show(ctx context.Context, args []string) error {
	e, err := a.pickEntry(ctx, args)
	if err != nil {
		return err
	}
	a.printEntry(e)
	return nil
}

// Edit replaces the transcript of an entry. An empty input keeps it.
func (a *App) Edit(ctx context.Context, args []string) error {
	e, err := a.pickEntry(ctx, args)
	if err != nil {
		return err
	}

	dimColor.Fprintln(a.out, e.Transcript)
	text, err := GetMultiline(a.reader, "Enter the new transcript", a.out)
	if err != nil {
		return err
	}
	if text == "" || text == e.Transcript {
		dimColor.Fprintln(a.out, "No changes.")
		return nil
	}

	e.Transcript = text
	if err := a.entries.Update(ctx, a.email, e); err != nil {
		return err
	}
	okColor.Fprintln(a.out, "Entry updated.")
	return nil
}

// AddTag adds a tag to an entry. When the tag is prompted for, the
// vocabulary is offered as suggestions. A blank answer changes nothing.
func (a *App) AddTag(ctx context.Context, args []string) error {
	e, err := a.pickEntry(ctx, args)
	if err != nil {
		return err
	}

	if len(args) < 2 {
		a.printSuggestions(e)
	}
	tag, err := a.tagArg(args, "Enter tag to add")
	if err != nil {
		return err
	}

	updated, err := a.entries.AddTag(ctx, a.email, e.ID, tag)
	if errors.Is(err, common.ErrEmptyTag) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, "Tags: ")
	tagColor.Fprintln(a.out, journal.FormatTags(updated.Tags))
	return nil
}

// Tags prints the tag vocabulary.
func (a *App) Tags(_ context.Context) error {
	if len(a.suggestions) == 0 {
		dimColor.Fprintln(a.out, "No tag suggestions configured.")
		return nil
	}
	for _, t := range a.suggestions {
		tagColor.Fprintln(a.out, "  "+t)
	}
	return nil
}

// printSuggestions lists vocabulary tags the entry does not carry yet.
func (a *App) printSuggestions(e journal.Entry) {
	var free []string
	for _, t := range a.suggestions {
		if !e.HasTag(t) {
			free = append(free, t)
		}
	}
	if len(free) == 0 {
		return
	}
	dimColor.Fprint(a.out, "Suggestions: ")
	tagColor.Fprintln(a.out, strings.Join(free, "، "))
}

func (a *App) RemoveTag(ctx context.Context, args []string) error {
	e, err := a.pickEntry(ctx, args)
	if err != nil {
		return err
	}

	tag, err := a.tagArg(args, "Enter tag to remove")
	if err != nil {
		return err
	}
	if !e.HasTag(tag) {
		return fmt.Errorf("entry has no tag %q", tag)
	}

	updated, err := a.entries.RemoveTag(ctx, a.email, e.ID, tag, a.confirmer())
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, "Tags: ")
	tagColor.Fprintln(a.out, journal.FormatTags(updated.Tags))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	e, err := a.pickEntry(ctx, args)
	if err != nil {
		return err
	}

	if err := a.entries.Delete(ctx, a.email, e.ID, a.confirmer()); err != nil {
		return err
	}
	okColor.Fprintln(a.out, "Entry deleted.")
	return nil
}

// Export prints the entry as text (default), markdown or html.
func (a *App) Export(ctx context.Context, args []string) error {
	e, err := a.pickEntry(ctx, args)
	if err != nil {
		return err
	}

	format := "text"
	if len(args) > 1 {
		format = strings.ToLower(args[1])
	}

	var out string
	switch format {
	case "text", "txt":
		out = journal.FormatText(e, a.loc)
	case "markdown", "md":
		out = journal.FormatMarkdown(e, a.loc)
	case "html":
		out, err = journal.FormatHTML(e, a.loc)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown export format %q", common.ErrValidation, format)
	}

	fmt.Fprintln(a.out, out)
	return nil
}

// Archive uploads the text export to the configured bucket.
func (a *App) Archive(ctx context.Context, args []string) error {
	if a.archiver == nil || !a.archiver.Enabled() {
		dimColor.Fprintln(a.out, "Archiving is not configured.")
		return nil
	}

	e, err := a.pickEntry(ctx, args)
	if err != nil {
		return err
	}

	key, err := a.archiver.Archive(ctx, a.email, e)
	if err != nil {
		return err
	}
	okColor.Fprintf(a.out, "Archived as %s\n", key)
	return nil
}

func (a *App) printEntry(e journal.Entry) {
	fmt.Fprintf(a.out, "ID:       %s\n", e.ID)
	fmt.Fprintf(a.out, "Date:     %s\n", journal.FormatDate(e.CreatedAt, a.loc))
	fmt.Fprintf(a.out, "Duration: %s\n", journal.FormatDuration(e.Duration))
	fmt.Fprint(a.out, "Tags:     ")
	tagColor.Fprintln(a.out, journal.FormatTags(e.Tags))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, e.Transcript)
}

// pickEntry resolves the first argument, or an interactive answer, to an
// entry. A number selects by position in the list view.
func (a *App) pickEntry(ctx context.Context, args []string) (journal.Entry, error) {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	} else {
		var err error
		ref, err = getSimpleText(a.reader, "Enter entry number or id", a.out)
		if err != nil {
			return journal.Entry{}, err
		}
	}
	if ref == "" {
		return journal.Entry{}, fmt.Errorf("%w: entry reference is required", common.ErrValidation)
	}

	if n, err := strconv.Atoi(ref); err == nil {
		list, err := a.entries.List(ctx, a.email)
		if err != nil {
			return journal.Entry{}, err
		}
		if n < 1 || n > len(list) {
			return journal.Entry{}, common.ErrNotFound
		}
		return list[n-1], nil
	}

	return a.entries.Get(ctx, a.email, ref)
}

// tagArg joins everything after the entry reference so tags may contain
// spaces, or prompts when nothing was given.
func (a *App) tagArg(args []string, prompt string) (string, error) {
	if len(args) > 1 {
		return strings.Join(args[1:], " "), nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}
