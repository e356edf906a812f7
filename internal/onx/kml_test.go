package onx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/trace"
)

const onxKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>My Content</name>
    <Placemark>
      <name>Wallow</name>
      <ExtendedData>
        <Data name="id"><value>onx-wp-9</value></Data>
        <Data name="icon"><value>Water Source</value></Data>
        <Data name="color"><value>rgba(0,255,255,1)</value></Data>
        <Data name="notes"><value>Muddy in June</value></Data>
      </ExtendedData>
      <Point>
        <coordinates>-105.8556,39.6425,0</coordinates>
      </Point>
    </Placemark>
    <Folder>
      <Placemark>
        <name>Bench Trail</name>
        <LineString>
          <coordinates>-105.85,39.64,3501.2 -105.86,39.65 bogus -120.0,91.0</coordinates>
        </LineString>
      </Placemark>
    </Folder>
    <Placemark>
      <name>North Meadow</name>
      <ExtendedData>
        <Data name="OnX:id"><value>onx-sh-3</value></Data>
        <Data name="color"><value>rgba(255,0,0,1)</value></Data>
      </ExtendedData>
      <Polygon>
        <outerBoundaryIs>
          <LinearRing>
            <coordinates>-105.8,39.6,0 -105.81,39.6,0 -105.81,39.61,0 -105.8,39.6,0</coordinates>
          </LinearRing>
        </outerBoundaryIs>
      </Polygon>
    </Placemark>
    <Placemark>
      <name>No geometry</name>
    </Placemark>
    <Placemark>
      <name>Empty point</name>
      <Point><coordinates></coordinates></Point>
    </Placemark>
  </Document>
</kml>`

func TestReadKML(t *testing.T) {
	doc, err := ReadKML(writeInput(t, "export.kml", onxKML), nil)
	require.NoError(t, err)

	t.Run("scaffold folders include areas", func(t *testing.T) {
		assert.Equal(t, "onx_kml", doc.Metadata["source"])
		require.NotNil(t, doc.GetFolder(geo.ImportShapesFolderID))
		assert.Equal(t, "Areas", doc.GetFolder(geo.ImportShapesFolderID).Name)
	})

	t.Run("point placemark", func(t *testing.T) {
		wps := doc.Waypoints()
		require.Len(t, wps, 1, "the empty point is dropped")

		wp := wps[0]
		assert.Equal(t, "onx-wp-9", wp.ID)
		assert.Equal(t, "Wallow", wp.Name)
		assert.Equal(t, "Muddy in June", wp.Notes)
		assert.Equal(t, "Water Source", wp.Style.OnxIcon)
		assert.Equal(t, "rgba(0,255,255,1)", wp.Style.OnxColor)
		assert.Equal(t, -105.8556, wp.Lon)
		assert.Equal(t, 39.6425, wp.Lat)
	})

	t.Run("linestring inside a folder", func(t *testing.T) {
		tracks := doc.Tracks()
		require.Len(t, tracks, 1)

		trk := tracks[0]
		assert.Equal(t, "Bench Trail", trk.Name)
		assert.NotEmpty(t, trk.ID)
		require.Len(t, trk.Points, 2, "the bare token and the out-of-range tuple are skipped")
		require.NotNil(t, trk.Points[0].Ele)
		assert.Equal(t, 3501.2, *trk.Points[0].Ele)
		assert.Nil(t, trk.Points[1].Ele)
	})

	t.Run("polygon with legacy id key", func(t *testing.T) {
		shapes := doc.Shapes()
		require.Len(t, shapes, 1)

		s := shapes[0]
		assert.Equal(t, "onx-sh-3", s.ID)
		assert.Equal(t, "North Meadow", s.Name)
		assert.Equal(t, "rgba(255,0,0,1)", s.Style.OnxColor)
		assert.Equal(t, geo.ImportShapesFolderID, s.FolderID)
		require.Len(t, s.Rings, 1)
		assert.Len(t, s.Rings[0], 4)
	})
}

func TestReadKMLTrace(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")
	tw, err := trace.NewWriter(tracePath)
	require.NoError(t, err)

	_, err = ReadKML(writeInput(t, "export.kml", onxKML), tw)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	events, err := trace.Read(tracePath)
	require.NoError(t, err)

	geoms := map[string]int{}
	for _, ev := range events {
		if ev["event"] == "input.kml.placemark" {
			geom, _ := ev["geom"].(string)
			geoms[geom]++
		}
	}
	assert.Equal(t, map[string]int{"Point": 1, "LineString": 1, "Polygon": 1}, geoms)
}

func TestReadKMLErrors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := ReadKML(writeInput(t, "empty.kml", ""), nil)
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("wrong root element", func(t *testing.T) {
		_, err := ReadKML(writeInput(t, "wrong.kml", "<gpx></gpx>"), nil)
		assert.ErrorContains(t, err, "not a kml file")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadKML(filepath.Join(t.TempDir(), "nope.kml"), nil)
		assert.Error(t, err)
	})
}
