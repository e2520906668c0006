package views

import (
	"fmt"
	"strings"
	"time"

	"todust/models"
)

// RenderDocument exports entries as an AsciiDoc document, active entries
// first and the done section only when there is something in it.
func RenderDocument(active, done []models.Entry) string {
	var b strings.Builder

	b.WriteString("== Active\n\n")
	for _, entry := range active {
		writeEntry(&b, entry)
	}

	if len(done) > 0 {
		b.WriteString("== Done\n\n")
		for _, entry := range done {
			writeEntry(&b, entry)
		}
	}

	return b.String()
}

func writeEntry(b *strings.Builder, entry models.Entry) {
	fmt.Fprintf(b, "=== %s\n\n", Headline(entry.Text))
	fmt.Fprintf(b, "Project:: %s\n", entry.Project)
	fmt.Fprintf(b, "UUID:: %s\n", entry.UUID)
	fmt.Fprintf(b, "Started:: %s\n", entry.Started.Format(time.RFC3339))

	if entry.Finished != nil {
		fmt.Fprintf(b, "Finished:: %s\n", entry.Finished.Format(time.RFC3339))
	}
	if entry.Due != nil {
		fmt.Fprintf(b, "Due:: %s\n", entry.Due.Format("2006-01-02"))
	}

	b.WriteString("\n====\n\n")
	b.WriteString(Lines(entry.Text))
	b.WriteString("====\n\n")
}
