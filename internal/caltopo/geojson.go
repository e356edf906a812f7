// Package caltopo reads and writes CalTopo's export formats: GeoJSON in
// both directions plus the minimal GPX CalTopo also produces.
package caltopo

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/moltude/cairn/internal/text"
)

// FeatureCollection is the top level of a CalTopo GeoJSON export.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one exported CalTopo object. Folders are features too, with
// null geometry and class "Folder".
type Feature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry keeps coordinates raw until the type is known: Point,
// LineString and Polygon nest differently.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// IDString renders the feature id, which CalTopo emits as either a string
// or a number.
func (f *Feature) IDString() string {
	if f.ID == nil {
		return ""
	}
	if s, ok := f.ID.(string); ok {
		return s
	}
	if n, ok := f.ID.(float64); ok && n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return fmt.Sprint(f.ID)
}

// Title returns the display title. CalTopo omits the property for unnamed
// objects, which read back as "Untitled".
func (f *Feature) Title() string {
	if _, ok := f.Properties["title"]; !ok {
		return "Untitled"
	}
	return f.propString("title")
}

// Class returns the CalTopo object class, "Unknown" when absent.
func (f *Feature) Class() string {
	if _, ok := f.Properties["class"]; !ok {
		return "Unknown"
	}
	return f.propString("class")
}

// Description returns the description with any HTML markup stripped.
func (f *Feature) Description() string {
	return text.StripHTML(f.propString("description"))
}

// Symbol returns the CalTopo marker symbol, if any.
func (f *Feature) Symbol() string {
	return f.propString("marker-symbol")
}

// IsFolder reports whether the feature is a folder entry.
func (f *Feature) IsFolder() bool {
	return f.Class() == "Folder"
}

// IsMarker reports whether the feature is a point of interest.
func (f *Feature) IsMarker() bool {
	return f.Class() == "Marker" && f.geometryType() == "Point"
}

// IsLine reports whether the feature is a line. CalTopo uses class
// "Shape" for both lines and polygons; older exports also use "Line".
func (f *Feature) IsLine() bool {
	c := f.Class()
	return (c == "Line" || c == "Shape") && f.geometryType() == "LineString"
}

// IsPolygon reports whether the feature is an area.
func (f *Feature) IsPolygon() bool {
	return f.Class() == "Shape" && f.geometryType() == "Polygon"
}

func (f *Feature) geometryType() string {
	if f.Geometry == nil {
		return ""
	}
	return f.Geometry.Type
}

func (f *Feature) propString(key string) string {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (f *Feature) propFloat(key string) float64 {
	switch v := f.Properties[key].(type) {
	case float64:
		return v
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// pointCoords decodes Point coordinates. CalTopo points may carry extra
// elevation and time dimensions.
func (g *Geometry) pointCoords() ([]float64, error) {
	var c []float64
	if err := json.Unmarshal(g.Coordinates, &c); err != nil {
		return nil, err
	}
	if len(c) < 2 {
		return nil, fmt.Errorf("point has %d coordinate values", len(c))
	}
	return c, nil
}

// lineCoords decodes LineString coordinates, each position 2 to 4 values.
func (g *Geometry) lineCoords() ([][]float64, error) {
	var c [][]float64
	if err := json.Unmarshal(g.Coordinates, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// polygonCoords decodes Polygon rings.
func (g *Geometry) polygonCoords() ([][][]float64, error) {
	var c [][][]float64
	if err := json.Unmarshal(g.Coordinates, &c); err != nil {
		return nil, err
	}
	return c, nil
}
