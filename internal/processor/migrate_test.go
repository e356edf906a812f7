package processor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltude/cairn/internal/trace"
)

const migrateGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" xmlns:onx="https://wwww.onxmaps.com/" version="1.1" creator="onX Backcountry">
  <wpt lat="39.6425" lon="-105.8556">
    <name>Glassing Knob</name>
    <desc>notes=NW bench
id=onx-wp-1</desc>
    <extensions>
      <onx:icon>Water Source</onx:icon>
      <onx:color>rgba(0,255,255,1)</onx:color>
    </extensions>
  </wpt>
  <wpt lat="39.6425" lon="-105.8556">
    <name>Glassing Knob</name>
    <desc>id=onx-wp-2</desc>
  </wpt>
  <trk>
    <name>Fence Line</name>
    <desc>id=onx-trk-7</desc>
    <extensions>
      <onx:color>rgba(52,199,89,1)</onx:color>
      <onx:style>dash</onx:style>
      <onx:weight>6.0</onx:weight>
    </extensions>
    <trkseg>
      <trkpt lat="39.64" lon="-105.85"></trkpt>
      <trkpt lat="39.641" lon="-105.851"></trkpt>
    </trkseg>
  </trk>
</gpx>`

const migrateKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>My Content</name>
    <Placemark>
      <name>Fence Line</name>
      <ExtendedData>
        <Data name="id"><value>onx-trk-7</value></Data>
      </ExtendedData>
      <Polygon>
        <outerBoundaryIs><LinearRing>
          <coordinates>-105.85,39.64,0 -105.851,39.64,0 -105.851,39.641,0 -105.85,39.64,0</coordinates>
        </LinearRing></outerBoundaryIs>
      </Polygon>
    </Placemark>
    <Placemark>
      <name>North Meadow</name>
      <Polygon>
        <outerBoundaryIs><LinearRing>
          <coordinates>-105.8,39.6,0 -105.801,39.6,0 -105.801,39.601,0 -105.8,39.6,0</coordinates>
        </LinearRing></outerBoundaryIs>
      </Polygon>
    </Placemark>
    <Placemark>
      <name>North Meadow</name>
      <Polygon>
        <outerBoundaryIs><LinearRing>
          <coordinates>-105.8,39.6,0 -105.801,39.6,0 -105.801,39.601,0 -105.8,39.6,0</coordinates>
        </LinearRing></outerBoundaryIs>
      </Polygon>
    </Placemark>
  </Document>
</kml>`

type featureDump struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

func readFeatures(t *testing.T, path string) []featureDump {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fc struct {
		Features []featureDump `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	return fc.Features
}

func classCount(features []featureDump) map[string]int {
	out := make(map[string]int)
	for _, f := range features {
		cls, _ := f.Properties["class"].(string)
		out[cls]++
	}
	return out
}

func TestMigratorRun(t *testing.T) {
	dir := t.TempDir()
	gpxPath := filepath.Join(dir, "backcountry.gpx")
	kmlPath := filepath.Join(dir, "backcountry.kml")
	require.NoError(t, os.WriteFile(gpxPath, []byte(migrateGPX), 0o644))
	require.NoError(t, os.WriteFile(kmlPath, []byte(migrateKML), 0o644))
	outDir := filepath.Join(dir, "caltopo_ready")
	tracePath := filepath.Join(dir, "trace.jsonl")

	tw, err := trace.NewWriter(tracePath)
	require.NoError(t, err)

	mig := &Migrator{Trace: tw, Clock: fixedClock()}
	result, err := mig.Run(gpxPath, MigrateOptions{
		KMLPath:         kmlPath,
		OutputDir:       outDir,
		DedupeWaypoints: true,
		DedupeShapes:    true,
	})
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	t.Run("merge prefers the kml polygon", func(t *testing.T) {
		require.NotNil(t, result.Merge)
		assert.Equal(t, 2, result.Merge.Added, "both meadow polygons arrive without ids")
		require.Len(t, result.Merge.Decisions, 1)
		assert.Equal(t, "prefer_polygon", result.Merge.Decisions[0].Action)
		assert.Equal(t, "onx-trk-7", result.Merge.Decisions[0].OnxID)
		assert.Equal(t, 0, result.Tracks)
	})

	t.Run("dedup collapses the copies", func(t *testing.T) {
		require.NotNil(t, result.WaypointReport)
		assert.Equal(t, 1, result.WaypointReport.DroppedCount())
		require.NotNil(t, result.ShapeReport)
		assert.Equal(t, 1, result.ShapeReport.DroppedCount())
		assert.Equal(t, 1, result.Waypoints)
		assert.Equal(t, 2, result.Shapes)
	})

	t.Run("primary document", func(t *testing.T) {
		assert.Equal(t, filepath.Join(outDir, "backcountry.json"), result.PrimaryPath)
		features := readFeatures(t, result.PrimaryPath)
		counts := classCount(features)
		assert.Equal(t, 3, counts["Folder"], "the scaffold root is not exported")
		assert.Equal(t, 1, counts["Marker"])
		assert.Equal(t, 2, counts["Shape"])

		data, err := os.ReadFile(result.PrimaryPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "NW bench", "the surviving copy keeps its notes")
	})

	t.Run("dropped shapes document", func(t *testing.T) {
		assert.Equal(t, filepath.Join(outDir, "backcountry_dropped_shapes.json"), result.DroppedPath)
		features := readFeatures(t, result.DroppedPath)
		counts := classCount(features)
		assert.Equal(t, 1, counts["Shape"])

		var title string
		for _, f := range features {
			if f.Properties["class"] == "Shape" {
				title, _ = f.Properties["title"].(string)
			}
		}
		assert.Equal(t, "North Meadow", title)
	})

	t.Run("summary file", func(t *testing.T) {
		data, err := os.ReadFile(result.SummaryPath)
		require.NoError(t, err)
		md := string(data)
		assert.Contains(t, md, "## Cairn shape dedup summary")
		assert.Contains(t, md, "- **Waypoint dedup dropped**: 1")
		assert.Contains(t, md, "- **Shape dedup groups**: 1")
		assert.Contains(t, md, "- **Shape dedup dropped features**: 1")
		assert.Contains(t, md, "- **polygon** `North Meadow`")
	})

	t.Run("icon report file", func(t *testing.T) {
		data, err := os.ReadFile(result.IconReportPath)
		require.NoError(t, err)
		md := string(data)
		assert.Contains(t, md, "## OnX → CalTopo icon mapping report")
		assert.Contains(t, md, "Input GPX: `backcountry.gpx`")
		assert.Contains(t, md, "Input KML: `backcountry.kml`")
		assert.Contains(t, md, "`Water Source`")
	})

	t.Run("trace lifecycle", func(t *testing.T) {
		events, err := trace.Read(tracePath)
		require.NoError(t, err)
		require.NotEmpty(t, events)

		assert.Equal(t, "run.start", events[0]["event"])
		assert.Equal(t, "migrate.onx-to-caltopo", events[0]["command"])
		assert.Equal(t, "run.end", events[len(events)-1]["event"])

		byName := make(map[string]trace.Event)
		for _, ev := range events {
			name, _ := ev["event"].(string)
			if _, seen := byName[name]; !seen {
				byName[name] = ev
			}
		}
		require.Contains(t, byName, "inventory.before_dedup")
		require.Contains(t, byName, "inventory.after_dedup")
		require.Contains(t, byName, "dedup.report")
		assert.EqualValues(t, 2, byName["inventory.before_dedup"]["waypoint_count"])
		assert.EqualValues(t, 1, byName["inventory.after_dedup"]["waypoint_count"])
		assert.EqualValues(t, 1, byName["dedup.report"]["dedup_group_count"])

		require.Contains(t, byName, "quality.warnings",
			"duplicate waypoint and shape names should be flagged before dedup")
		assert.EqualValues(t, 2, byName["quality.warnings"]["total"])
	})
}

func TestMigratorGPXOnly(t *testing.T) {
	dir := t.TempDir()
	gpxPath := filepath.Join(dir, "backcountry.gpx")
	require.NoError(t, os.WriteFile(gpxPath, []byte(migrateGPX), 0o644))
	outDir := filepath.Join(dir, "caltopo_ready")

	mig := &Migrator{Clock: fixedClock()}
	result, err := mig.Run(gpxPath, MigrateOptions{OutputDir: outDir, BaseName: "combined"})
	require.NoError(t, err)

	assert.Nil(t, result.Merge)
	assert.Nil(t, result.WaypointReport)
	assert.Nil(t, result.ShapeReport)
	assert.Equal(t, 2, result.Waypoints, "dedup off keeps both copies")
	assert.Equal(t, 1, result.Tracks)

	t.Run("base name overrides the input stem", func(t *testing.T) {
		assert.Equal(t, filepath.Join(outDir, "combined.json"), result.PrimaryPath)
		assert.Equal(t, filepath.Join(outDir, "combined_dropped_shapes.json"), result.DroppedPath)
	})

	t.Run("every run writes all four outputs", func(t *testing.T) {
		for _, p := range []string{result.PrimaryPath, result.DroppedPath, result.SummaryPath, result.IconReportPath} {
			_, err := os.Stat(p)
			assert.NoError(t, err, p)
		}
	})

	t.Run("dropped document is empty", func(t *testing.T) {
		counts := classCount(readFeatures(t, result.DroppedPath))
		assert.Zero(t, counts["Shape"])
		assert.Zero(t, counts["Marker"])
	})

	t.Run("summary reports no duplicates", func(t *testing.T) {
		data, err := os.ReadFile(result.SummaryPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "_No shape duplicates were detected under the fuzzy-match policy._")
	})
}

func TestMigratorInputErrors(t *testing.T) {
	t.Run("missing gpx", func(t *testing.T) {
		mig := &Migrator{}
		_, err := mig.Run(filepath.Join(t.TempDir(), "nope.gpx"), MigrateOptions{OutputDir: t.TempDir()})
		assert.Error(t, err)
	})

	t.Run("missing kml", func(t *testing.T) {
		dir := t.TempDir()
		gpxPath := filepath.Join(dir, "backcountry.gpx")
		require.NoError(t, os.WriteFile(gpxPath, []byte(migrateGPX), 0o644))

		mig := &Migrator{}
		_, err := mig.Run(gpxPath, MigrateOptions{
			KMLPath:   filepath.Join(dir, "nope.kml"),
			OutputDir: dir,
		})
		assert.Error(t, err)
	})
}
