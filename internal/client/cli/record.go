package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/rooznegar/internal/journal"
)

// Record captures audio until the user presses Enter, streaming live
// transcript to the terminal, then tags and saves the result.
func (a *App) Record(ctx context.Context) error {
	rec, err := a.startRecording(ctx, func(fragment string) {
		liveColor.Fprint(a.out, fragment)
	})
	if err != nil {
		return fmt.Errorf("cannot start recording: %w", err)
	}

	okColor.Fprintln(a.out, "Recording... press Enter to stop.")

	if _, err := a.reader.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		rec.Abort()
		return err
	}

	result := rec.Stop()
	fmt.Fprintln(a.out)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	dimColor.Fprintln(a.out, "Saving...")
	entry, err := a.pipeline.Finish(ctx, a.email, result.Transcript, result.Duration)
	if err != nil {
		return err
	}
	if entry == nil {
		dimColor.Fprintln(a.out, "Nothing was heard, no entry saved.")
		return nil
	}

	okColor.Fprintf(a.out, "Saved (%s). ", journal.FormatDuration(entry.Duration))
	fmt.Fprint(a.out, "Tags: ")
	tagColor.Fprintln(a.out, journal.FormatTags(entry.Tags))
	return nil
}
