package caltopo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/moltude/cairn/internal/geo"
)

// Orphaned items (folderId missing or pointing nowhere) are collected
// under this folder so nothing silently disappears.
const (
	orphanFolderID   = "orphaned_features"
	orphanFolderName = "Uncategorized"
)

// ReadGeoJSON reads a CalTopo GeoJSON export into a document. When the
// export carries no folders, everything lands in a single folder named
// after the file.
func ReadGeoJSON(path string) (*geo.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	doc, err := ParseGeoJSON(data, folderNameFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("parse geojson %s: %w", path, err)
	}
	doc.Metadata["path"] = path
	return doc, nil
}

// ParseGeoJSON parses CalTopo GeoJSON bytes. defaultFolderName names the
// fallback folder used when the export has no folders of its own.
func ParseGeoJSON(data []byte, defaultFolderName string) (*geo.Document, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("no features found")
	}

	doc := geo.NewDocument()
	doc.Metadata["source"] = "caltopo_geojson"

	for i := range fc.Features {
		f := &fc.Features[i]
		if f.IsFolder() {
			doc.EnsureFolder(f.IDString(), f.Title(), "")
		}
	}

	// Without folders every feature goes into one default folder; with
	// folders, features missing a valid folderId are orphaned.
	flat := len(doc.Folders) == 0
	if flat {
		if defaultFolderName == "" {
			defaultFolderName = "Imported"
		}
		doc.EnsureFolder("default", defaultFolderName, "")
	}

	for i := range fc.Features {
		f := &fc.Features[i]
		if f.IsFolder() {
			continue
		}

		folderID := "default"
		if !flat {
			folderID = f.propString("folderId")
			if folderID == "" || doc.GetFolder(folderID) == nil {
				doc.EnsureFolder(orphanFolderID, orphanFolderName, "")
				folderID = orphanFolderID
			}
		}

		switch {
		case f.IsMarker():
			if w := markerToWaypoint(f, folderID); w != nil {
				doc.AddItem(w)
			}
		case f.IsLine():
			if t := lineToTrack(f, folderID); t != nil {
				doc.AddItem(t)
			}
		case f.IsPolygon():
			if s := polygonToShape(f, folderID); s != nil {
				doc.AddItem(s)
			}
		default:
			log.Debug().
				Str("id", f.IDString()).
				Str("class", f.Class()).
				Str("geometry", f.geometryType()).
				Msg("skipping unrecognized feature")
		}
	}

	return doc, nil
}

func markerToWaypoint(f *Feature, folderID string) *geo.Waypoint {
	coords, err := f.Geometry.pointCoords()
	if err != nil {
		log.Warn().Err(err).Str("title", f.Title()).Msg("dropping marker with bad coordinates")
		return nil
	}
	lon, lat := coords[0], coords[1]
	if !geo.ValidLonLat(lon, lat) {
		log.Warn().
			Str("title", f.Title()).
			Float64("lon", lon).
			Float64("lat", lat).
			Msg("dropping marker with out-of-range coordinates")
		return nil
	}

	id := f.IDString()
	if id == "" {
		id = geo.NewID()
	}
	return &geo.Waypoint{
		ID:       id,
		FolderID: folderID,
		Name:     f.Title(),
		Lon:      lon,
		Lat:      lat,
		Notes:    f.Description(),
		Style: geo.Style{
			MarkerSymbol: f.Symbol(),
			MarkerColor:  f.propString("marker-color"),
			Stroke:       f.propString("stroke"),
		},
	}
}

func lineToTrack(f *Feature, folderID string) *geo.Track {
	coords, err := f.Geometry.lineCoords()
	if err != nil {
		log.Warn().Err(err).Str("title", f.Title()).Msg("dropping line with bad coordinates")
		return nil
	}

	points := make([]geo.TrackPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 || !geo.ValidLonLat(c[0], c[1]) {
			continue
		}
		pt := geo.TrackPoint{Lon: c[0], Lat: c[1]}
		if len(c) >= 3 {
			ele := c[2]
			pt.Ele = &ele
		}
		if len(c) >= 4 {
			ms := int64(c[3])
			pt.TimeMS = &ms
		}
		points = append(points, pt)
	}
	if len(points) == 0 {
		log.Warn().Str("title", f.Title()).Msg("dropping line with no usable points")
		return nil
	}

	id := f.IDString()
	if id == "" {
		id = geo.NewID()
	}
	return &geo.Track{
		ID:       id,
		FolderID: folderID,
		Name:     f.Title(),
		Points:   points,
		Notes:    f.Description(),
		Style: geo.Style{
			Stroke:      f.propString("stroke"),
			StrokeWidth: f.propFloat("stroke-width"),
			Pattern:     f.propString("pattern"),
		},
	}
}

func polygonToShape(f *Feature, folderID string) *geo.Shape {
	coords, err := f.Geometry.polygonCoords()
	if err != nil {
		log.Warn().Err(err).Str("title", f.Title()).Msg("dropping polygon with bad coordinates")
		return nil
	}

	var rings [][]geo.LonLat
	for _, raw := range coords {
		ring := make([]geo.LonLat, 0, len(raw))
		for _, c := range raw {
			if len(c) < 2 || !geo.ValidLonLat(c[0], c[1]) {
				continue
			}
			ring = append(ring, geo.LonLat{Lon: c[0], Lat: c[1]})
		}
		if len(ring) > 0 {
			rings = append(rings, ring)
		}
	}
	if len(rings) == 0 {
		log.Warn().Str("title", f.Title()).Msg("dropping polygon with no usable rings")
		return nil
	}

	id := f.IDString()
	if id == "" {
		id = geo.NewID()
	}
	return &geo.Shape{
		ID:       id,
		FolderID: folderID,
		Name:     f.Title(),
		Rings:    rings,
		Notes:    f.Description(),
		Style: geo.Style{
			Stroke:      f.propString("stroke"),
			StrokeWidth: f.propFloat("stroke-width"),
			Pattern:     f.propString("pattern"),
		},
	}
}

// folderNameFromPath turns "Trip_Plan_2024.json" into "Trip Plan 2024".
func folderNameFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.ReplaceAll(stem, "_", " ")
}
