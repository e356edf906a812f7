package caltopo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caltopoGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="CalTopo">
  <wpt lat="39.6" lon="-105.5">
    <name>Water cache</name>
    <desc>Under the ledge</desc>
  </wpt>
  <wpt lat="99.0" lon="-105.5">
    <name>Off the map</name>
  </wpt>
  <wpt lat="39.7" lon="-105.4"></wpt>
  <trk>
    <name>Ridge walk</name>
    <trkseg>
      <trkpt lat="39.6" lon="-105.5"><ele>2843.2</ele></trkpt>
      <trkpt lat="39.61" lon="-105.49"></trkpt>
    </trkseg>
  </trk>
  <rte>
    <name>Exit</name>
    <rtept lat="39.62" lon="-105.48"></rtept>
    <rtept lat="39.63" lon="-105.47"></rtept>
  </rte>
</gpx>
`

func writeGPX(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadGPX(t *testing.T) {
	doc, err := ReadGPX(writeGPX(t, "Elk_Creek_Trip.gpx", caltopoGPX))
	require.NoError(t, err)

	t.Run("single folder named after the file", func(t *testing.T) {
		require.Len(t, doc.Folders, 1)
		assert.Equal(t, "default", doc.Folders[0].ID)
		assert.Equal(t, "Elk Creek Trip", doc.Folders[0].Name)
		assert.Equal(t, "caltopo_gpx", doc.Metadata["source"])
	})

	t.Run("waypoints carry no styling", func(t *testing.T) {
		wps := doc.Waypoints()
		require.Len(t, wps, 2, "out-of-range waypoint dropped")

		assert.Equal(t, "Water cache", wps[0].Name)
		assert.Equal(t, "Under the ledge", wps[0].Notes)
		assert.Empty(t, wps[0].Style.MarkerSymbol, "empty symbol lets keyword mapping decide")
		assert.Empty(t, wps[0].Style.MarkerColor)

		assert.Equal(t, "Waypoint 3", wps[1].Name, "unnamed waypoint numbered by position")
	})

	t.Run("tracks and routes become tracks", func(t *testing.T) {
		trks := doc.Tracks()
		require.Len(t, trks, 2)

		ridge := trks[0]
		assert.Equal(t, "Ridge walk", ridge.Name)
		assert.Equal(t, "caltopo_gpx_trk_0", ridge.ID)
		assert.Equal(t, 4.0, ridge.Style.StrokeWidth)
		assert.Equal(t, "solid", ridge.Style.Pattern)
		require.Len(t, ridge.Points, 2)
		require.NotNil(t, ridge.Points[0].Ele)
		assert.Equal(t, 2843.2, *ridge.Points[0].Ele)
		require.NotNil(t, ridge.Points[1].Ele, "missing elevation filled with zero")
		assert.Zero(t, *ridge.Points[1].Ele)

		exit := trks[1]
		assert.Equal(t, "Exit", exit.Name)
		assert.Equal(t, "caltopo_gpx_rte_0", exit.ID)
		assert.Len(t, exit.Points, 2)
	})
}

func TestReadGPXErrors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		_, err := ReadGPX(writeGPX(t, "empty.gpx", ""))
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("not xml", func(t *testing.T) {
		_, err := ReadGPX(writeGPX(t, "junk.gpx", "this is not a gpx file"))
		assert.Error(t, err)
	})

	t.Run("no features", func(t *testing.T) {
		bare := `<?xml version="1.0"?><gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="CalTopo"></gpx>`
		_, err := ReadGPX(writeGPX(t, "bare.gpx", bare))
		assert.ErrorContains(t, err, "no waypoints")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadGPX(filepath.Join(t.TempDir(), "nope.gpx"))
		assert.Error(t, err)
	})
}
