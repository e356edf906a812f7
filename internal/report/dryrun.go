package report

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/palette"
)

// PlannedFile is one output the conversion would write.
type PlannedFile struct {
	Name  string
	Type  string
	Count int
}

// IconCount is one row of the predicted icon distribution.
type IconCount struct {
	Icon  string
	Count int
}

// DryRun previews a conversion without writing anything.
type DryRun struct {
	IconCounts     []IconCount
	Unmapped       []icons.UnmappedSymbol
	TotalWaypoints int
	TotalTracks    int
	TotalShapes    int
	Files          []PlannedFile
}

// SortIconCounts turns an icon tally into rows ordered by descending
// count, ties by name.
func SortIconCounts(counts map[string]int) []IconCount {
	rows := make([]IconCount, 0, len(counts))
	for icon, n := range counts {
		rows = append(rows, IconCount{Icon: icon, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Icon < rows[j].Icon
	})
	return rows
}

// Render returns the preview as plain text for the terminal.
func (d *DryRun) Render() string {
	var b strings.Builder
	b.WriteString("DRY RUN - no files will be created\n")
	b.WriteString("\nSummary:\n")
	fmt.Fprintf(&b, "  Waypoints: %d\n", d.TotalWaypoints)
	fmt.Fprintf(&b, "  Tracks:    %d\n", d.TotalTracks)
	fmt.Fprintf(&b, "  Shapes:    %d\n", d.TotalShapes)

	if len(d.IconCounts) > 0 {
		b.WriteString("\nWaypoint icon distribution:\n")
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ICON\tCOLOR\tCOUNT\tSHARE")
		for _, row := range d.IconCounts {
			share := 0.0
			if d.TotalWaypoints > 0 {
				share = float64(row.Count) / float64(d.TotalWaypoints) * 100
			}
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%.1f%%\n", row.Icon, iconColorName(row.Icon), row.Count, share)
		}
		tw.Flush()
	}

	if len(d.Unmapped) > 0 {
		fmt.Fprintf(&b, "\nUnmapped symbols: %d\n", len(d.Unmapped))
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  SYMBOL\tCOUNT\tEXAMPLE")
		for _, u := range d.Unmapped {
			example := ""
			if len(u.Examples) > 0 {
				example = truncate(u.Examples[0], 40)
			}
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", u.Symbol, u.Count, example)
		}
		tw.Flush()
	}

	if len(d.Files) > 0 {
		fmt.Fprintf(&b, "\nWould create %d file(s):\n", len(d.Files))
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  FILENAME\tTYPE\tITEMS")
		for _, f := range d.Files {
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", f.Name, f.Type, f.Count)
		}
		tw.Flush()
	}

	b.WriteString("\nRun without --dry-run to create files.\n")
	return b.String()
}

// iconColorName labels an icon's default color for the distribution
// table, "RED ORANGE" style.
func iconColorName(icon string) string {
	return strings.ToUpper(strings.ReplaceAll(palette.Name(icons.IconColor(icon)), "-", " "))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
