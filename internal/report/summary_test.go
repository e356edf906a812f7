package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltude/cairn/internal/dedupe"
)

func TestShapeDedupSummaryRender(t *testing.T) {
	t.Run("no duplicates", func(t *testing.T) {
		s := ShapeDedupSummary{
			GPXPath:     "in/export.gpx",
			KMLPath:     "in/areas.kml",
			PrimaryPath: "out/export.json",
			DroppedPath: "out/export_dropped_shapes.json",
		}

		got := s.Render()

		assert.True(t, strings.HasPrefix(got, "## Cairn shape dedup summary\n"))
		assert.Contains(t, got, "- **GPX**: `in/export.gpx`")
		assert.Contains(t, got, "- **KML**: `in/areas.kml`")
		assert.Contains(t, got, "- **Primary (deduped)**: `out/export.json`")
		assert.Contains(t, got, "- **Secondary (dropped duplicates)**: `out/export_dropped_shapes.json`")
		assert.Contains(t, got, "- **Waypoint dedup dropped**: 0")
		assert.Contains(t, got, "- **Shape dedup groups**: 0")
		assert.Contains(t, got, "- **Shape dedup dropped features**: 0")
		assert.Contains(t, got, "_No shape duplicates were detected under the fuzzy-match policy._")
		assert.True(t, strings.HasSuffix(got, "\n"))
	})

	t.Run("per-group decisions", func(t *testing.T) {
		s := ShapeDedupSummary{
			GPXPath:          "in/export.gpx",
			KMLPath:          "in/areas.kml",
			PrimaryPath:      "out/export.json",
			DroppedPath:      "out/export_dropped_shapes.json",
			WaypointsDropped: 2,
			Shapes: &dedupe.ShapeReport{Groups: []dedupe.ShapeGroup{
				{
					Kind: "polygon", KeptID: "sh-1", KeptName: "North Meadow",
					DroppedIDs: []string{"sh-2", "sh-3"}, Reason: "polygon_shape_match",
				},
			}},
		}

		got := s.Render()

		assert.Contains(t, got, "- **Waypoint dedup dropped**: 2")
		assert.Contains(t, got, "- **Shape dedup groups**: 1")
		assert.Contains(t, got, "- **Shape dedup dropped features**: 2")
		assert.Contains(t, got, "- **polygon** `North Meadow`")
		assert.Contains(t, got, "  - **kept**: `sh-1`")
		assert.Contains(t, got, "  - **dropped (2)**: `sh-2`, `sh-3`")
		assert.Contains(t, got, "  - **reason**: polygon_shape_match")
		assert.NotContains(t, got, "_No shape duplicates")
	})
}

func TestShapeDedupSummaryWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "export_SUMMARY.md")
	s := ShapeDedupSummary{GPXPath: "a.gpx", PrimaryPath: "a.json", DroppedPath: "a_dropped_shapes.json"}

	require.NoError(t, s.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Render(), string(data))
}
