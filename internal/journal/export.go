package journal

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

const (
	exportTitle     = "راننده‌نگار - خاطره ضبط شده"
	exportRule      = "============================"
	exportNoTags    = "بدون تگ"
	exportBodyTitle = "--- متن خاطره ---"
)

// FormatDuration renders seconds as "M دقیقه و S ثانیه".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d دقیقه و %d ثانیه", seconds/60, seconds%60)
}

// FormatTags joins tags with ", " or returns the "no tags" label.
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return exportNoTags
	}
	return strings.Join(tags, ", ")
}

// FormatDate renders a creation time in loc (UTC when nil).
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

// FormatText renders e as clipboard-ready plain text.
func FormatText(e Entry, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(exportTitle + "\n")
	b.WriteString(exportRule + "\n\n")
	b.WriteString("تاریخ: " + FormatDate(e.CreatedAt, loc) + "\n")
	b.WriteString("مدت زمان: " + FormatDuration(e.Duration) + "\n")
	b.WriteString("تگ‌ها: " + FormatTags(e.Tags) + "\n\n")
	b.WriteString(exportBodyTitle + "\n\n")
	b.WriteString(e.Transcript)
	return strings.TrimSpace(b.String())
}

// FormatMarkdown renders e as a Markdown document.
func FormatMarkdown(e Entry, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", exportTitle)
	fmt.Fprintf(&b, "- **تاریخ:** %s\n", FormatDate(e.CreatedAt, loc))
	fmt.Fprintf(&b, "- **مدت زمان:** %s\n", FormatDuration(e.Duration))
	fmt.Fprintf(&b, "- **تگ‌ها:** %s\n\n", FormatTags(e.Tags))
	fmt.Fprintf(&b, "## %s\n\n", strings.Trim(exportBodyTitle, "- "))
	for _, para := range strings.Split(strings.TrimSpace(e.Transcript), "\n") {
		if para = strings.TrimSpace(para); para != "" {
			b.WriteString(para + "\n\n")
		}
	}
	return b.String()
}

// FormatHTML renders the Markdown export of e to an HTML fragment.
// Raw HTML in the transcript is dropped by goldmark's default renderer.
func FormatHTML(e Entry, loc *time.Location) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(FormatMarkdown(e, loc)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
