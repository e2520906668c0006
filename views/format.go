// Package views holds the stateless presentation layer: formatting
// helpers, HTML templates and the AsciiDoc exporter. Everything here
// takes entry snapshots and returns display strings; nothing mutates or
// queries the store.
package views

import (
	"fmt"
	"strings"
	"time"

	"todust/models"
)

const headlineLength = 100

// SingleLine collapses a multi-line text into one line.
func SingleLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Headline is the one-line preview of an entry text used in listings.
func Headline(s string) string {
	return Truncate(SingleLine(s), headlineLength)
}

// FormatDuration renders a duration in the coarsest sensible unit:
// seconds under a minute, minutes under an hour, hours under a day,
// days beyond.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// Age formats how long an entry has been around. Only meaningful while
// the entry is active.
func Age(entry models.Entry) string {
	return FormatDuration(time.Since(entry.Started))
}

// DueOrDash renders a due date or a dash when none is set.
func DueOrDash(due *time.Time) string {
	if due == nil {
		return "-"
	}
	return due.Format("2006-01-02")
}

// Lines reflows a text for AsciiDoc output: regular lines become their
// own paragraph, lines inside ---- delimited blocks keep their spacing.
func Lines(s string) string {
	var out strings.Builder

	isCodeblock := false
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if line == "----" {
			isCodeblock = !isCodeblock
		}

		out.WriteString(line)
		out.WriteString("\n")

		if !isCodeblock {
			out.WriteString("\n")
		}
	}

	return out.String()
}

// EntryView is the display projection of an entry handed to the HTML
// templates. Derived fields only, never persisted.
type EntryView struct {
	UUID     string
	Project  string
	Headline string
	Text     string
	Started  string
	Finished string
	Age      string
	Due      string
	Done     bool
}

func NewEntryView(entry models.Entry) EntryView {
	view := EntryView{
		UUID:     entry.UUID.String(),
		Project:  entry.Project,
		Headline: Headline(entry.Text),
		Text:     entry.Text,
		Started:  entry.Started.Format(time.RFC3339),
		Age:      Age(entry),
		Due:      DueOrDash(entry.Due),
		Done:     !entry.Active(),
	}
	if entry.Finished != nil {
		view.Finished = entry.Finished.Format(time.RFC3339)
	}
	return view
}

func NewEntryViews(entries []models.Entry) []EntryView {
	entryViews := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		entryViews = append(entryViews, NewEntryView(entry))
	}
	return entryViews
}
