package caltopo

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/palette"
	"github.com/moltude/cairn/internal/trace"
)

// Description modes for written features.
const (
	DescriptionNotesOnly = "notes_only"
	DescriptionDebug     = "debug"
)

// Route color strategies for lines that arrive without a color.
const (
	RouteColorPalette     = "palette"
	RouteColorDefaultBlue = "default_blue"
	RouteColorNone        = "none"
)

// Red dot fallback for markers where neither an icon nor a color is known.
const fallbackMarkerColor = "#FF0000"

// Writer renders a document as CalTopo GeoJSON. The zero value writes
// notes-only descriptions, palette route colors and indented output.
type Writer struct {
	Registry *icons.Registry
	Trace    *trace.Writer

	// DescriptionMode is notes_only (default) or debug, which appends a
	// parseable provenance block to every description.
	DescriptionMode string
	// RouteColorStrategy is palette (default), default_blue or none.
	RouteColorStrategy string
	// Compact minifies the JSON output.
	Compact bool
}

// Write renders the document to path.
func (w *Writer) Write(doc *geo.Document, path string) error {
	data, err := w.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}

// Marshal renders the document as CalTopo GeoJSON bytes.
func (w *Writer) Marshal(doc *geo.Document) ([]byte, error) {
	reg := w.Registry
	if reg == nil {
		reg = icons.Default()
	}
	source := docSource(doc)

	out := geojsonOut{Type: "FeatureCollection", Features: []featureOut{}}

	// Folders first, the way CalTopo itself exports them. The scaffold
	// import root is internal bookkeeping and never written.
	for _, folder := range doc.Folders {
		if folder.ID == geo.ImportRootFolderID {
			continue
		}
		out.Features = append(out.Features, featureOut{
			Type:       "Feature",
			ID:         folder.ID,
			Properties: folderProps{Class: "Folder", Title: folder.Name},
		})
		w.Trace.Emit(trace.Event{"event": "output.folder", "id": folder.ID, "title": folder.Name})
	}

	for _, item := range doc.Items {
		switch it := item.(type) {
		case *geo.Waypoint:
			out.Features = append(out.Features, w.markerFeature(it, reg, source))
		case *geo.Track:
			out.Features = append(out.Features, w.trackFeature(it, source))
		case *geo.Shape:
			out.Features = append(out.Features, w.polygonFeature(it, source))
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	if w.Compact {
		m := minify.New()
		m.AddFunc("application/json", mjson.Minify)
		if data, err = m.Bytes("application/json", data); err != nil {
			return nil, fmt.Errorf("minify geojson: %w", err)
		}
	}
	return append(data, '\n'), nil
}

func (w *Writer) markerFeature(it *geo.Waypoint, reg *icons.Registry, source string) featureOut {
	icon := strings.TrimSpace(it.Style.OnxIcon)
	mapped, mappingSource := reg.MapOnxIconToCalTopoSymbol(icon)
	symbol := it.Style.MarkerSymbol
	if symbol == "" {
		symbol = mapped
	}

	// Keep the provided color even when the icon is unknown; the red dot
	// is reserved for markers with neither.
	color := it.Style.MarkerColor
	if color == "" {
		color = palette.RGBAToCalTopoHex(it.Style.OnxColor)
	}
	if color == "" {
		color = fallbackMarkerColor
	}

	fields := onxFields{id: it.Style.OnxID, color: it.Style.OnxColor, icon: icon}
	desc := w.description(it.Name, it.Notes, source, fields)

	// An icon with no direct mapping would otherwise be lost, so its name
	// is kept in the visible description for manual recovery.
	if w.mode() == DescriptionNotesOnly && icon != "" &&
		mappingSource != icons.MappingDirect && it.Style.MarkerSymbol == "" &&
		reg.ShouldAppendUnknownIcon() {
		token := "OnX icon: " + icon
		if !strings.Contains(desc, token) {
			if desc != "" {
				desc += "\n\n"
			}
			desc = strings.TrimSpace(desc + token)
		}
	}

	w.Trace.Emit(trace.Event{
		"event":               "output.feature",
		"feature_type":        "Marker",
		"id":                  it.ID,
		"folderId":            it.FolderID,
		"title":               it.Name,
		"marker-symbol":       symbol,
		"marker-color":        color,
		"icon_mapping_source": string(mappingSource),
	})

	return featureOut{
		Type:     "Feature",
		ID:       it.ID,
		Geometry: &geometryOut{Type: "Point", Coordinates: []float64{it.Lon, it.Lat}},
		Properties: markerProps{
			Class:        "Marker",
			Title:        it.Name,
			Description:  desc,
			MarkerSymbol: symbol,
			MarkerColor:  color,
			FolderID:     it.FolderID,
			Cairn:        w.provenance(it.Name, source, fields),
		},
	}
}

func (w *Writer) trackFeature(it *geo.Track, source string) featureOut {
	stroke := w.lineStroke(&it.Style, it.Name)
	pattern := linePattern(&it.Style)
	width := lineWidth(&it.Style)

	descFields := onxFields{
		id:     it.Style.OnxID,
		color:  it.Style.OnxColor,
		style:  it.Style.OnxStyle,
		weight: it.Style.OnxWeight,
	}

	// Elevation and time survive only when some point has them, as 4-value
	// positions the way CalTopo exports its own recorded tracks.
	var anyExtra bool
	for _, p := range it.Points {
		if p.Ele != nil || p.TimeMS != nil {
			anyExtra = true
			break
		}
	}
	coords := make([][]float64, 0, len(it.Points))
	for _, p := range it.Points {
		if anyExtra {
			var ele, ms float64
			if p.Ele != nil {
				ele = *p.Ele
			}
			if p.TimeMS != nil {
				ms = float64(*p.TimeMS)
			}
			coords = append(coords, []float64{p.Lon, p.Lat, ele, ms})
		} else {
			coords = append(coords, []float64{p.Lon, p.Lat})
		}
	}

	coordDim := 2
	if anyExtra {
		coordDim = 4
	}
	w.Trace.Emit(trace.Event{
		"event":        "output.feature",
		"feature_type": "Shape",
		"id":           it.ID,
		"folderId":     it.FolderID,
		"title":        it.Name,
		"stroke":       stroke,
		"stroke-width": width,
		"pattern":      pattern,
		"point_count":  len(coords),
		"coord_dim":    coordDim,
	})

	return featureOut{
		Type:     "Feature",
		ID:       it.ID,
		Geometry: &geometryOut{Type: "LineString", Coordinates: coords},
		Properties: lineProps{
			Class:       "Shape",
			Title:       it.Name,
			Description: w.description(it.Name, it.Notes, source, descFields),
			StrokeWidth: width,
			Pattern:     pattern,
			FolderID:    it.FolderID,
			Cairn:       w.provenance(it.Name, source, descFields),
			Stroke:      stroke,
		},
	}
}

func (w *Writer) polygonFeature(it *geo.Shape, source string) featureOut {
	stroke := w.lineStroke(&it.Style, it.Name)

	descFields := onxFields{
		id:    it.Style.OnxID,
		color: it.Style.OnxColor,
		icon:  strings.TrimSpace(it.Style.OnxIcon),
	}
	provFields := descFields
	provFields.style = it.Style.OnxStyle
	provFields.weight = it.Style.OnxWeight

	rings := make([][][]float64, 0, len(it.Rings))
	for _, ring := range it.Rings {
		r := make([][]float64, 0, len(ring))
		for _, v := range ring {
			r = append(r, []float64{v.Lon, v.Lat})
		}
		rings = append(rings, r)
	}

	w.Trace.Emit(trace.Event{
		"event":        "output.feature",
		"feature_type": "Polygon",
		"id":           it.ID,
		"folderId":     it.FolderID,
		"title":        it.Name,
	})

	return featureOut{
		Type:     "Feature",
		ID:       it.ID,
		Geometry: &geometryOut{Type: "Polygon", Coordinates: rings},
		Properties: lineProps{
			Class:       "Shape",
			Title:       it.Name,
			Description: w.description(it.Name, it.Notes, source, descFields),
			StrokeWidth: lineWidth(&it.Style),
			Pattern:     linePattern(&it.Style),
			FolderID:    it.FolderID,
			Cairn:       w.provenance(it.Name, source, provFields),
			Stroke:      stroke,
		},
	}
}

// lineStroke picks the CalTopo stroke for a line or polygon: the source
// stroke, the onX color, then the configured strategy. Empty means the
// stroke key is omitted entirely.
func (w *Writer) lineStroke(s *geo.Style, name string) string {
	if s.Stroke != "" {
		return s.Stroke
	}
	if hex := palette.RGBAToCalTopoHex(s.OnxColor); hex != "" {
		return hex
	}
	switch w.strategy() {
	case RouteColorDefaultBlue:
		return "#0000FF"
	case RouteColorNone:
		return ""
	default:
		return palette.RouteColorForName(name)
	}
}

func linePattern(s *geo.Style) string {
	if s.Pattern != "" {
		return s.Pattern
	}
	if s.OnxStyle != "" {
		return s.OnxStyle
	}
	return "solid"
}

func lineWidth(s *geo.Style) float64 {
	if s.StrokeWidth != 0 {
		return s.StrokeWidth
	}
	return 2
}

// onxFields is the onX identity a feature carries into its description
// and provenance metadata. Which fields apply depends on the feature
// kind, so call sites fill only what they mean.
type onxFields struct {
	id, color, icon, style, weight string
}

func (w *Writer) description(title, notes, source string, f onxFields) string {
	notes = strings.TrimSpace(notes)
	if w.mode() != DescriptionDebug {
		return notes
	}

	var lines []string
	if notes != "" {
		lines = append(lines, notes, "")
	}
	lines = append(lines, "cairn:source="+source, "name="+title)
	if f.id != "" {
		lines = append(lines, "OnX:id="+f.id)
	}
	if f.color != "" {
		lines = append(lines, "OnX:color="+f.color)
	}
	if f.icon != "" {
		lines = append(lines, "OnX:icon="+f.icon)
	}
	if f.style != "" {
		lines = append(lines, "OnX:style="+f.style)
	}
	if f.weight != "" {
		lines = append(lines, "OnX:weight="+f.weight)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func (w *Writer) provenance(title, source string, f onxFields) *provenance {
	p := &provenance{Source: source, Name: title}
	if f.id != "" || f.color != "" || f.icon != "" || f.style != "" || f.weight != "" {
		p.Onx = &onxMeta{ID: f.id, Color: f.color, Icon: f.icon, Style: f.style, Weight: f.weight}
	}
	return p
}

func (w *Writer) mode() string {
	if normalizeOption(w.DescriptionMode) == DescriptionDebug {
		return DescriptionDebug
	}
	return DescriptionNotesOnly
}

func (w *Writer) strategy() string {
	switch normalizeOption(w.RouteColorStrategy) {
	case RouteColorDefaultBlue:
		return RouteColorDefaultBlue
	case RouteColorNone:
		return RouteColorNone
	default:
		return RouteColorPalette
	}
}

// normalizeOption folds the CLI spelling ("notes-only") onto the wire
// spelling ("notes_only").
func normalizeOption(v string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "-", "_")
}

func docSource(doc *geo.Document) string {
	if doc.Metadata != nil {
		if s, ok := doc.Metadata["source"].(string); ok && s != "" {
			return s
		}
	}
	return "onx_gpx"
}

// Output wire structs. Property structs keep CalTopo's key order stable
// across runs.
type geojsonOut struct {
	Type     string       `json:"type"`
	Features []featureOut `json:"features"`
}

type featureOut struct {
	Type       string       `json:"type"`
	ID         string       `json:"id"`
	Geometry   *geometryOut `json:"geometry"`
	Properties any          `json:"properties"`
}

type geometryOut struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type folderProps struct {
	Class string `json:"class"`
	Title string `json:"title"`
}

type markerProps struct {
	Class        string      `json:"class"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	MarkerSymbol string      `json:"marker-symbol"`
	MarkerColor  string      `json:"marker-color"`
	FolderID     string      `json:"folderId"`
	Cairn        *provenance `json:"cairn"`
}

// lineProps covers LineString and Polygon features alike.
type lineProps struct {
	Class       string      `json:"class"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StrokeWidth float64     `json:"stroke-width"`
	Pattern     string      `json:"pattern"`
	FolderID    string      `json:"folderId"`
	Cairn       *provenance `json:"cairn"`
	Stroke      string      `json:"stroke,omitempty"`
}

// provenance is the "cairn" metadata object. CalTopo ignores unknown
// properties, and a later round trip can mine it for the original onX
// identity.
type provenance struct {
	Source string   `json:"source"`
	Name   string   `json:"name"`
	Onx    *onxMeta `json:"OnX,omitempty"`
}

type onxMeta struct {
	ID     string `json:"id,omitempty"`
	Color  string `json:"color,omitempty"`
	Icon   string `json:"icon,omitempty"`
	Style  string `json:"style,omitempty"`
	Weight string `json:"weight,omitempty"`
}
