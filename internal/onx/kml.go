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

type kmlFile struct {
	XMLName    xml.Name
	Document   kmlContainer   `xml:"Document"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

// kmlContainer models Document and Folder nesting. onX exports are flat
// but hand-edited files sometimes group placemarks into folders.
type kmlContainer struct {
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

func (c kmlContainer) collect(into []kmlPlacemark) []kmlPlacemark {
	into = append(into, c.Placemarks...)
	for _, f := range c.Folders {
		into = f.collect(into)
	}
	return into
}

type kmlPlacemark struct {
	Name    string        `xml:"name"`
	Data    []kmlData     `xml:"ExtendedData>Data"`
	Point   *kmlGeometry  `xml:"Point"`
	Line    *kmlGeometry  `xml:"LineString"`
	Polygon *kmlPolygon   `xml:"Polygon"`
	Multi   *kmlMultiGeom `xml:"MultiGeometry"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlGeometry struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer string `xml:"outerBoundaryIs>LinearRing>coordinates"`
}

type kmlMultiGeom struct {
	Points   []kmlGeometry `xml:"Point"`
	Lines    []kmlGeometry `xml:"LineString"`
	Polygons []kmlPolygon  `xml:"Polygon"`
}

func (p kmlPlacemark) point() *kmlGeometry {
	if p.Point != nil {
		return p.Point
	}
	if p.Multi != nil && len(p.Multi.Points) > 0 {
		return &p.Multi.Points[0]
	}
	return nil
}

func (p kmlPlacemark) lineString() *kmlGeometry {
	if p.Line != nil {
		return p.Line
	}
	if p.Multi != nil && len(p.Multi.Lines) > 0 {
		return &p.Multi.Lines[0]
	}
	return nil
}

func (p kmlPlacemark) polygon() *kmlPolygon {
	if p.Polygon != nil {
		return p.Polygon
	}
	if p.Multi != nil && len(p.Multi.Polygons) > 0 {
		return &p.Multi.Polygons[0]
	}
	return nil
}

// extendedData flattens the placemark's Data elements into a map keyed
// by the lowercased name attribute.
func (p kmlPlacemark) extendedData() map[string]string {
	kv := make(map[string]string, len(p.Data))
	for _, d := range p.Data {
		k := strings.ToLower(strings.TrimSpace(d.Name))
		if k == "" {
			continue
		}
		kv[k] = strings.TrimSpace(d.Value)
	}
	return kv
}

type kmlCoord struct {
	lon, lat float64
	ele      *float64
}

// parseCoordList reads a KML coordinate list: whitespace-separated
// "lon,lat[,alt]" tuples. A malformed tuple is skipped, not fatal.
func parseCoordList(s string) []kmlCoord {
	var out []kmlCoord
	for _, token := range strings.Fields(s) {
		parts := strings.Split(token, ",")
		if len(parts) < 2 {
			continue
		}
		lon, lonErr := strconv.ParseFloat(parts[0], 64)
		lat, latErr := strconv.ParseFloat(parts[1], 64)
		if lonErr != nil || latErr != nil || !geo.ValidLonLat(lon, lat) {
			continue
		}
		c := kmlCoord{lon: lon, lat: lat}
		if len(parts) >= 3 && parts[2] != "" {
			v, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				continue
			}
			c.ele = &v
		}
		out = append(out, c)
	}
	return out
}

// ReadKML reads an onX KML export into a document. Points, LineStrings
// and Polygons map to waypoints, tracks and shapes; anything else is
// skipped. Trace events record every placemark read; tw may be nil.
func ReadKML(path string, tw *trace.Writer) (*geo.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kml: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("kml file is empty: %s", path)
	}

	var file kmlFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse kml %s: %w", path, err)
	}
	if !strings.Contains(strings.ToLower(file.XMLName.Local), "kml") {
		return nil, fmt.Errorf("%s is not a kml file (root element %q)", path, file.XMLName.Local)
	}

	doc := geo.NewDocument()
	doc.Metadata["source"] = "onx_kml"
	doc.Metadata["path"] = path
	ensureImportFolders(doc)
	doc.EnsureFolder(geo.ImportShapesFolderID, "Areas", geo.ImportRootFolderID)

	placemarks := file.Document.collect(nil)
	placemarks = append(placemarks, file.Placemarks...)

	for i, pm := range placemarks {
		readPlacemark(doc, i, pm, tw)
	}

	return doc, nil
}

func readPlacemark(doc *geo.Document, idx int, pm kmlPlacemark, tw *trace.Writer) {
	kv := pm.extendedData()
	// onX writes the identifier under "id"; older exports used "OnX:id".
	id := firstNonEmpty(kv["id"], kv["onx:id"])
	icon := kv["icon"]
	color := kv["color"]
	name := text.NormalizeName(pm.Name)
	notes := text.NormalizeName(kv["notes"])

	if pt := pm.point(); pt != nil {
		coords := parseCoordList(pt.Coordinates)
		if len(coords) == 0 {
			return
		}
		wp := &geo.Waypoint{
			ID:       id,
			FolderID: geo.ImportWaypointsFolderID,
			Name:     firstNonEmpty(name, text.NormalizeName(kv["name"])),
			Lon:      coords[0].lon,
			Lat:      coords[0].lat,
			Notes:    notes,
			Style:    geo.Style{OnxIcon: icon, OnxColor: color, OnxID: id},
		}
		if wp.ID == "" {
			wp.ID = geo.NewID()
		}
		doc.AddItem(wp)
		tw.Emit(trace.Event{
			"event":     "input.kml.placemark",
			"idx":       idx,
			"geom":      "Point",
			"name_raw":  pm.Name,
			"name_norm": wp.Name,
			"onx":       map[string]string{"id": id, "icon": icon, "color": color},
		})
		return
	}

	if ln := pm.lineString(); ln != nil {
		coords := parseCoordList(ln.Coordinates)
		if len(coords) == 0 {
			return
		}
		points := make([]geo.TrackPoint, len(coords))
		for j, c := range coords {
			points[j] = geo.TrackPoint{Lon: c.lon, Lat: c.lat, Ele: c.ele}
		}
		t := &geo.Track{
			ID:       id,
			FolderID: geo.ImportTracksFolderID,
			Name:     name,
			Points:   points,
			Notes:    notes,
			Style:    geo.Style{OnxColor: color, OnxID: id},
		}
		if t.ID == "" {
			t.ID = geo.NewID()
		}
		doc.AddItem(t)
		tw.Emit(trace.Event{
			"event":       "input.kml.placemark",
			"idx":         idx,
			"geom":        "LineString",
			"name_raw":    pm.Name,
			"name_norm":   t.Name,
			"point_count": len(points),
			"onx":         map[string]string{"id": id, "color": color},
		})
		return
	}

	if pg := pm.polygon(); pg != nil {
		coords := parseCoordList(pg.Outer)
		if len(coords) == 0 {
			return
		}
		ring := make([]geo.LonLat, len(coords))
		for j, c := range coords {
			ring[j] = geo.LonLat{Lon: c.lon, Lat: c.lat}
		}
		s := &geo.Shape{
			ID:       id,
			FolderID: geo.ImportShapesFolderID,
			Name:     name,
			Rings:    [][]geo.LonLat{ring},
			Notes:    notes,
			Style:    geo.Style{OnxColor: color, OnxID: id},
		}
		if s.ID == "" {
			s.ID = geo.NewID()
		}
		doc.AddItem(s)
		tw.Emit(trace.Event{
			"event":     "input.kml.placemark",
			"idx":       idx,
			"geom":      "Polygon",
			"name_raw":  pm.Name,
			"name_norm": s.Name,
			"ring_len":  len(ring),
			"onx":       map[string]string{"id": id, "color": color},
		})
	}
}
