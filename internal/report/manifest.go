package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/moltude/cairn/internal/text"
)

// ManifestEntry is one file a conversion actually wrote.
type ManifestEntry struct {
	Name  string
	Type  string
	Count int
	Bytes int64
}

// RenderManifest returns the written-files table for the terminal.
func RenderManifest(entries []ManifestEntry) string {
	if len(entries) == 0 {
		return "No files were created.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Created %d file(s):\n", len(entries))
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  FILENAME\tTYPE\tITEMS\tSIZE")
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n", e.Name, e.Type, e.Count, text.FormatFileSize(e.Bytes))
	}
	tw.Flush()
	return b.String()
}

// RenderNameChanges returns the renamed-items table for the terminal,
// or an empty string when nothing was renamed.
func RenderNameChanges(kind string, changes []NameChangeRow) string {
	if len(changes) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Renamed %d %s (unsupported characters removed):\n", len(changes), kind)
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  BEFORE\tAFTER")
	for _, c := range changes {
		fmt.Fprintf(tw, "  %s\t%s\n", truncate(c.Before, 40), truncate(c.After, 40))
	}
	tw.Flush()
	return b.String()
}

// NameChangeRow is one rename performed while writing output names.
type NameChangeRow struct {
	Before string
	After  string
}
