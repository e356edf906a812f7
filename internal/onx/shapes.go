package onx

import (
	"os"
	"sort"
	"strings"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/palette"
	"github.com/moltude/cairn/internal/text"
)

// KMLWriter renders area shapes as KML, the one format onX accepts for
// polygon import. Only the outer ring is written; onX has no concept of
// holes.
type KMLWriter struct {
	Sort bool // natural-sort shapes by name before writing
}

// WriteShapes writes shapes to a single KML file. folderName becomes the
// KML document name. Shapes without coordinates are dropped.
func (w *KMLWriter) WriteShapes(shapes []*geo.Shape, path, folderName string) (OutputFile, error) {
	if w.Sort {
		shapes = append([]*geo.Shape(nil), shapes...)
		sort.SliceStable(shapes, func(i, j int) bool {
			return text.NaturalLess(shapes[i].Name, shapes[j].Name)
		})
	}

	lines := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<kml xmlns="http://www.opengis.net/kml/2.2">`,
		"  <Document>",
		"    <name>" + escapeXML(folderName) + "</name>",
	}
	count := 0
	for _, s := range shapes {
		if len(s.Rings) == 0 || len(s.Rings[0]) == 0 {
			continue
		}
		lines = append(lines, shapePlacemark(s)...)
		count++
	}
	lines = append(lines, "  </Document>", "</kml>")

	data := []byte(strings.Join(lines, "\n") + "\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return OutputFile{}, err
	}
	return OutputFile{Path: path, Bytes: int64(len(data)), Count: count}, nil
}

func shapePlacemark(s *geo.Shape) []string {
	lineColor := palette.CalTopoHexToKML(firstNonEmpty(s.Style.MarkerColor, s.Style.Stroke))
	fillColor := "7f" + lineColor[2:]

	lines := []string{
		"    <Placemark>",
		"      <name>" + escapeXML(s.Name) + "</name>",
	}
	if desc := text.StripHTML(s.Notes); desc != "" {
		lines = append(lines, "      <description>"+escapeXML(desc)+"</description>")
	}
	return append(lines,
		"      <Style>",
		"        <LineStyle>",
		"          <color>"+lineColor+"</color>",
		"          <width>2</width>",
		"        </LineStyle>",
		"        <PolyStyle>",
		"          <color>"+fillColor+"</color>",
		"        </PolyStyle>",
		"      </Style>",
		"      <Polygon>",
		"        <outerBoundaryIs>",
		"          <LinearRing>",
		"            <coordinates>"+ringCoordinates(s.Rings[0])+"</coordinates>",
		"          </LinearRing>",
		"        </outerBoundaryIs>",
		"      </Polygon>",
		"    </Placemark>",
	)
}

// ringCoordinates renders a ring as the space-separated lon,lat,ele
// triples KML expects. Elevation is always zero for area boundaries.
func ringCoordinates(ring []geo.LonLat) string {
	parts := make([]string, len(ring))
	for i, p := range ring {
		parts[i] = formatCoord(p.Lon) + "," + formatCoord(p.Lat) + ",0"
	}
	return strings.Join(parts, " ")
}
