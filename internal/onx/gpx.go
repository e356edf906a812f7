package onx

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/text"
	"github.com/moltude/cairn/internal/trace"
)

// onX exports disagree on the vendor namespace casing, so extension
// elements match on the lowercased URI instead of an exact string.
const onxNamespaceMarker = "onxmaps.com"

type gpxFile struct {
	XMLName xml.Name
	Wpt     []gpxWpt `xml:"wpt"`
	Trk     []gpxTrk `xml:"trk"`
	Rte     []gpxRte `xml:"rte"`
}

// Lat and lon stay strings so one malformed attribute drops that item
// instead of failing the whole unmarshal.
type gpxWpt struct {
	Lat        string        `xml:"lat,attr"`
	Lon        string        `xml:"lon,attr"`
	Name       string        `xml:"name"`
	Desc       string        `xml:"desc"`
	Extensions extensionList `xml:"extensions"`
}

type gpxTrk struct {
	Name       string        `xml:"name"`
	Desc       string        `xml:"desc"`
	Extensions extensionList `xml:"extensions"`
	Segments   []gpxTrkseg   `xml:"trkseg"`
}

type gpxTrkseg struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxRte struct {
	Name       string        `xml:"name"`
	Desc       string        `xml:"desc"`
	Extensions extensionList `xml:"extensions"`
	Points     []gpxPoint    `xml:"rtept"`
}

type gpxPoint struct {
	Lat  string `xml:"lat,attr"`
	Lon  string `xml:"lon,attr"`
	Ele  string `xml:"ele"`
	Time string `xml:"time"`
}

type extensionList struct {
	Nodes []extensionNode `xml:",any"`
}

type extensionNode struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// onx returns the first vendor extension with the given local name. A
// bare "onx" prefix also matches, covering files that never declare the
// namespace.
func (l extensionList) onx(local string) string {
	for _, n := range l.Nodes {
		if n.XMLName.Local != local {
			continue
		}
		space := strings.ToLower(n.XMLName.Space)
		if strings.Contains(space, onxNamespaceMarker) || space == "onx" {
			return strings.TrimSpace(n.Value)
		}
	}
	return ""
}

// ReadGPX reads an onX GPX export into a document. onX exports carry no
// folder structure, so everything lands under scaffold import folders.
// Trace events record every item read or skipped; tw may be nil.
func ReadGPX(path string, tw *trace.Writer) (*geo.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gpx: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("gpx file is empty: %s", path)
	}

	var file gpxFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse gpx %s: %w", path, err)
	}
	if !strings.Contains(strings.ToLower(file.XMLName.Local), "gpx") {
		return nil, fmt.Errorf("%s is not a gpx file (root element %q)", path, file.XMLName.Local)
	}

	doc := geo.NewDocument()
	doc.Metadata["source"] = "onx_gpx"
	doc.Metadata["path"] = path
	ensureImportFolders(doc)

	for i, wpt := range file.Wpt {
		readGPXWaypoint(doc, i, wpt, tw)
	}
	for i, trk := range file.Trk {
		var pts []gpxPoint
		for _, seg := range trk.Segments {
			pts = append(pts, seg.Points...)
		}
		if t := trackFromGPX(trk.Name, trk.Desc, trk.Extensions, pts); t != nil {
			doc.AddItem(t)
			emitTrackEvent(tw, "input.trk", i, trk.Name, t)
		}
	}
	for i, rte := range file.Rte {
		if t := trackFromGPX(rte.Name, rte.Desc, rte.Extensions, rte.Points); t != nil {
			doc.AddItem(t)
			emitTrackEvent(tw, "input.rte", i, rte.Name, t)
		}
	}

	return doc, nil
}

func ensureImportFolders(doc *geo.Document) {
	doc.EnsureFolder(geo.ImportRootFolderID, "OnX Import", "")
	doc.EnsureFolder(geo.ImportWaypointsFolderID, "Waypoints", geo.ImportRootFolderID)
	doc.EnsureFolder(geo.ImportTracksFolderID, "Tracks", geo.ImportRootFolderID)
}

func readGPXWaypoint(doc *geo.Document, idx int, wpt gpxWpt, tw *trace.Writer) {
	lat, lon, err := parseLatLon(wpt.Lat, wpt.Lon)
	if err != nil {
		tw.Emit(trace.Event{
			"event":   "input.wpt.error",
			"idx":     idx,
			"error":   err.Error(),
			"lat_raw": wpt.Lat,
			"lon_raw": wpt.Lon,
		})
		return
	}
	if !geo.ValidLonLat(lon, lat) {
		tw.Emit(trace.Event{
			"event":   "input.wpt.warning",
			"idx":     idx,
			"warning": "coordinates out of range",
			"lat":     lat,
			"lon":     lon,
		})
		return
	}

	kv, notes := ParseDescKV(wpt.Desc)
	icon := firstNonEmpty(wpt.Extensions.onx("icon"), kv["icon"])
	color := firstNonEmpty(wpt.Extensions.onx("color"), kv["color"])
	id := kv["id"]

	wp := &geo.Waypoint{
		ID:       id,
		FolderID: geo.ImportWaypointsFolderID,
		Name:     text.NormalizeName(wpt.Name),
		Lon:      lon,
		Lat:      lat,
		Notes:    text.NormalizeName(notes),
		Style: geo.Style{
			OnxIcon:  icon,
			OnxColor: color,
			OnxID:    id,
		},
	}
	if wp.ID == "" {
		wp.ID = geo.NewID()
	}
	doc.AddItem(wp)

	tw.Emit(trace.Event{
		"event":     "input.wpt",
		"idx":       idx,
		"lat":       lat,
		"lon":       lon,
		"name_raw":  wpt.Name,
		"name_norm": wp.Name,
		"onx":       map[string]string{"id": id, "icon": icon, "color": color},
	})
}

// trackFromGPX converts a trk or rte element, skipping unparseable and
// out-of-range points. Returns nil when no usable points remain.
func trackFromGPX(rawName, desc string, ext extensionList, pts []gpxPoint) *geo.Track {
	points := make([]geo.TrackPoint, 0, len(pts))
	for _, pt := range pts {
		lat, lon, err := parseLatLon(pt.Lat, pt.Lon)
		if err != nil || !geo.ValidLonLat(lon, lat) {
			continue
		}
		p := geo.TrackPoint{Lon: lon, Lat: lat, TimeMS: geo.ParseEpochMS(pt.Time)}
		if s := strings.TrimSpace(pt.Ele); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				p.Ele = &v
			}
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil
	}

	kv, notes := ParseDescKV(desc)
	id := kv["id"]
	t := &geo.Track{
		ID:       id,
		FolderID: geo.ImportTracksFolderID,
		Name:     text.NormalizeName(rawName),
		Points:   points,
		Notes:    text.NormalizeName(notes),
		Style: geo.Style{
			OnxColor:  firstNonEmpty(ext.onx("color"), kv["color"]),
			OnxStyle:  firstNonEmpty(ext.onx("style"), kv["style"]),
			OnxWeight: firstNonEmpty(ext.onx("weight"), kv["weight"]),
			OnxID:     id,
		},
	}
	if t.ID == "" {
		t.ID = geo.NewID()
	}
	return t
}

func emitTrackEvent(tw *trace.Writer, event string, idx int, rawName string, t *geo.Track) {
	tw.Emit(trace.Event{
		"event":       event,
		"idx":         idx,
		"name_raw":    rawName,
		"name_norm":   t.Name,
		"point_count": len(t.Points),
		"onx": map[string]string{
			"id":     t.Style.OnxID,
			"color":  t.Style.OnxColor,
			"style":  t.Style.OnxStyle,
			"weight": t.Style.OnxWeight,
		},
	})
}

func parseLatLon(latRaw, lonRaw string) (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q", latRaw)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q", lonRaw)
	}
	return lat, lon, nil
}
