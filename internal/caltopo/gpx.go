package caltopo

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-gpx"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/text"
)

// ReadGPX reads a CalTopo GPX export. These exports are minimal: names
// and coordinates only, no symbols, colors or folders. Everything lands
// in one folder named after the file, with empty styling so downstream
// resolution applies its defaults.
func ReadGPX(path string) (*geo.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gpx: %w", err)
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() == 0 {
		return nil, fmt.Errorf("gpx file is empty: %s", path)
	}

	g, err := gpx.Read(file)
	if err != nil {
		return nil, fmt.Errorf("parse gpx %s: %w", path, err)
	}

	doc := geo.NewDocument()
	doc.Metadata["source"] = "caltopo_gpx"
	doc.Metadata["path"] = path
	folder := doc.EnsureFolder("default", folderNameFromPath(path), "")

	for i, wpt := range g.Wpt {
		if !geo.ValidLonLat(wpt.Lon, wpt.Lat) {
			log.Warn().
				Int("index", i).
				Float64("lon", wpt.Lon).
				Float64("lat", wpt.Lat).
				Msg("dropping waypoint with out-of-range coordinates")
			continue
		}
		name := text.NormalizeName(wpt.Name)
		if name == "" {
			name = fmt.Sprintf("Waypoint %d", i+1)
		}
		doc.AddItem(&geo.Waypoint{
			ID:       fmt.Sprintf("caltopo_gpx_wpt_%d", i),
			FolderID: folder.ID,
			Name:     name,
			Lon:      wpt.Lon,
			Lat:      wpt.Lat,
			Notes:    text.StripHTML(firstNonEmpty(wpt.Desc, wpt.Cmt)),
		})
	}

	for i, trk := range g.Trk {
		var points []geo.TrackPoint
		for _, seg := range trk.TrkSeg {
			points = appendTrackPoints(points, seg.TrkPt)
		}
		if len(points) == 0 {
			continue
		}
		name := text.NormalizeName(trk.Name)
		if name == "" {
			name = fmt.Sprintf("Track %d", i+1)
		}
		doc.AddItem(&geo.Track{
			ID:       fmt.Sprintf("caltopo_gpx_trk_%d", i),
			FolderID: folder.ID,
			Name:     name,
			Points:   points,
			Notes:    text.StripHTML(firstNonEmpty(trk.Desc, trk.Cmt)),
			Style:    geo.Style{StrokeWidth: 4, Pattern: "solid"},
		})
	}

	for i, rte := range g.Rte {
		points := appendTrackPoints(nil, rte.RtePt)
		if len(points) == 0 {
			continue
		}
		name := text.NormalizeName(rte.Name)
		if name == "" {
			name = fmt.Sprintf("Route %d", i+1)
		}
		doc.AddItem(&geo.Track{
			ID:       fmt.Sprintf("caltopo_gpx_rte_%d", i),
			FolderID: folder.ID,
			Name:     name,
			Points:   points,
			Notes:    text.StripHTML(firstNonEmpty(rte.Desc, rte.Cmt)),
			Style:    geo.Style{StrokeWidth: 4, Pattern: "solid"},
		})
	}

	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("no waypoints, tracks or routes in gpx file: %s", path)
	}
	return doc, nil
}

// appendTrackPoints converts GPX points, dropping out-of-range vertices.
// Elevation defaults to zero the way CalTopo itself fills the gap.
func appendTrackPoints(points []geo.TrackPoint, pts []*gpx.WptType) []geo.TrackPoint {
	for _, pt := range pts {
		if !geo.ValidLonLat(pt.Lon, pt.Lat) {
			continue
		}
		ele := pt.Ele
		points = append(points, geo.TrackPoint{Lon: pt.Lon, Lat: pt.Lat, Ele: &ele})
	}
	return points
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
