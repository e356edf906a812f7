// Package report renders the human-readable artifacts of a conversion
// run: icon mapping reports, shape dedup summaries, dry-run previews and
// the inventories emitted into trace logs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moltude/cairn/internal/icons"
)

// IconReport is the markdown mapping report written next to a
// conversion's primary output so users can audit every icon decision.
type IconReport struct {
	Title     string
	Notes     []string
	Inventory []icons.InventoryEntry
	Rows      []icons.MappingRow
	Generated time.Time // zero means now
}

// Render returns the report as markdown.
func (r IconReport) Render() string {
	generated := r.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	var lines []string
	add := func(s string) { lines = append(lines, s) }

	add("## " + r.Title)
	add("")
	add("- Generated: `" + generated.UTC().Format(time.RFC3339) + "`")
	add("")

	if len(r.Notes) > 0 {
		add("### Notes")
		for _, n := range r.Notes {
			add("- " + n)
		}
		add("")
	}

	if len(r.Inventory) > 0 {
		add("### Incoming icons/symbols")
		add("")
		add("| label | count | examples |")
		add("|---|---:|---|")
		for _, e := range r.Inventory {
			add(fmt.Sprintf("| `%s` | %d | %s |", e.Label, e.Count, strings.Join(e.Examples, ", ")))
		}
		add("")
	}

	add("### Mapping")
	add("")
	add("| incoming | mapped_to | source | count | colors | examples |")
	add("|---|---|---|---:|---|---|")
	for _, row := range r.Rows {
		add(fmt.Sprintf("| `%s` | `%s` | `%s` | %d | %s | %s |",
			row.Incoming, row.Mapped, row.Source, row.Count,
			strings.Join(row.Colors, ", "), strings.Join(row.Examples, ", ")))
	}

	return strings.Join(lines, "\n") + "\n"
}

// Write renders the report to path, creating parent directories.
func (r IconReport) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(r.Render()), 0o644)
}
