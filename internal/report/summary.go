package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moltude/cairn/internal/dedupe"
)

// ShapeDedupSummary explains every dedup decision of a migrate run so
// users can audit what was dropped and recover it from the secondary
// file.
type ShapeDedupSummary struct {
	GPXPath     string
	KMLPath     string
	PrimaryPath string
	DroppedPath string

	WaypointsDropped int
	Shapes           *dedupe.ShapeReport // nil reads as empty
}

// Render returns the summary as markdown.
func (s ShapeDedupSummary) Render() string {
	var groups []dedupe.ShapeGroup
	dropped := 0
	if s.Shapes != nil {
		groups = s.Shapes.Groups
		dropped = s.Shapes.DroppedCount()
	}

	lines := []string{
		"## Cairn shape dedup summary",
		"",
		"This file explains why some shapes were removed from the primary CalTopo import file.",
		"Nothing is deleted permanently: every dropped feature is preserved in the secondary GeoJSON.",
		"",
		"### Inputs",
		"- **GPX**: `" + s.GPXPath + "`",
		"- **KML**: `" + s.KMLPath + "`",
		"",
		"### Outputs",
		"- **Primary (deduped)**: `" + s.PrimaryPath + "`",
		"- **Secondary (dropped duplicates)**: `" + s.DroppedPath + "`",
		"",
		"### Dedup policy",
		"- **Polygon preference**: when the same onX id exists as both a route/track (GPX) and a polygon (KML), the polygon wins and the line is dropped to avoid CalTopo id collisions.",
		"- **Shape dedup default**: enabled (can be disabled via `--no-dedupe-shapes`).",
		"- **Fuzzy match definition**:",
		"  - **Polygons**: rounded outlines compared with ring start and direction ignored.",
		"  - **Lines**: rounded courses compared in both directions; near-identical resampled geometry also merges.",
		"",
		"### Dedup results",
		fmt.Sprintf("- **Waypoint dedup dropped**: %d", s.WaypointsDropped),
		fmt.Sprintf("- **Shape dedup groups**: %d", len(groups)),
		fmt.Sprintf("- **Shape dedup dropped features**: %d", dropped),
		"",
		"### Per-group decisions",
		"",
	}

	if len(groups) == 0 {
		lines = append(lines, "_No shape duplicates were detected under the fuzzy-match policy._")
	}
	for _, g := range groups {
		backticked := make([]string, len(g.DroppedIDs))
		for i, id := range g.DroppedIDs {
			backticked[i] = "`" + id + "`"
		}
		lines = append(lines,
			fmt.Sprintf("- **%s** `%s`", g.Kind, g.KeptName),
			fmt.Sprintf("  - **kept**: `%s`", g.KeptID),
			fmt.Sprintf("  - **dropped (%d)**: %s", len(g.DroppedIDs), strings.Join(backticked, ", ")),
			fmt.Sprintf("  - **reason**: %s", g.Reason),
		)
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// Write renders the summary to path, creating parent directories.
func (s ShapeDedupSummary) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s.Render()), 0o644)
}
