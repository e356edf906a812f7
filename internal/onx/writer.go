package onx

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/palette"
	"github.com/moltude/cairn/internal/text"
)

// The onx namespace URI really does have four w's; onX's importer
// matches it verbatim.
const gpxOpenTag = `<gpx xmlns="http://www.topografix.com/GPX/1/1" xmlns:onx="https://wwww.onxmaps.com/" version="1.1" creator="Cairn - CalTopo to OnX Migration Tool">`

const gpxFooter = "</gpx>"

// NameChange records one rename forced by onX's character rules.
type NameChange struct {
	Before string
	After  string
}

// NameChanges collects renames per feature kind for the post-run
// summary. A nil tracker discards. Unchanged names are not recorded.
type NameChanges struct {
	Waypoints []NameChange
	Tracks    []NameChange
}

func (c *NameChanges) waypoint(before, after string) {
	if c == nil || before == after {
		return
	}
	c.Waypoints = append(c.Waypoints, NameChange{Before: before, After: after})
}

func (c *NameChanges) track(before, after string) {
	if c == nil || before == after {
		return
	}
	c.Tracks = append(c.Tracks, NameChange{Before: before, After: after})
}

// Total returns how many names changed across all kinds.
func (c *NameChanges) Total() int {
	if c == nil {
		return 0
	}
	return len(c.Waypoints) + len(c.Tracks)
}

// GPXWriter renders onX-importable GPX. Rendering is line-based so the
// byte-budget splitter can pack whole item blocks exactly.
type GPXWriter struct {
	Registry *icons.Registry // nil uses the built-in tables
	Changes  *NameChanges    // optional rename audit

	// PrefixIconNames puts "Icon - " in front of waypoint names whose
	// resolved icon is not the default. onX's sidebar sorts by name
	// only, so the prefix groups waypoints by type.
	PrefixIconNames bool

	// Timestamps stamps each waypoint with the write time.
	Timestamps bool

	Sort     bool // natural-sort items by name before writing
	Split    bool // split over MaxBytes into numbered part files
	MaxBytes int  // byte budget per file; 0 means DefaultMaxGPXBytes

	Clock clockwork.Clock // nil uses the wall clock
}

// WriteWaypoints writes waypoints as one or more GPX files rooted at
// path. folderName becomes the GPX metadata name onX shows on import.
func (w *GPXWriter) WriteWaypoints(wps []*geo.Waypoint, path, folderName string) ([]OutputFile, error) {
	if w.Sort {
		wps = append([]*geo.Waypoint(nil), wps...)
		sort.SliceStable(wps, func(i, j int) bool {
			return text.NaturalLess(wps[i].Name, wps[j].Name)
		})
	}

	reg := w.registry()
	blocks := make([][]string, 0, len(wps))
	for _, wp := range wps {
		blocks = append(blocks, w.waypointBlock(reg, wp))
	}
	return writeBlocks(gpxHeader(folderName), blocks, gpxFooter, path, w.Split, w.maxBytes())
}

// WriteTracks writes tracks as one or more GPX files rooted at path.
// Tracks with no points are dropped.
func (w *GPXWriter) WriteTracks(tracks []*geo.Track, path, folderName string) ([]OutputFile, error) {
	if w.Sort {
		tracks = append([]*geo.Track(nil), tracks...)
		sort.SliceStable(tracks, func(i, j int) bool {
			return text.NaturalLess(tracks[i].Name, tracks[j].Name)
		})
	}

	blocks := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		if len(t.Points) == 0 {
			continue
		}
		blocks = append(blocks, w.trackBlock(t))
	}
	return writeBlocks(gpxHeader(folderName), blocks, gpxFooter, path, w.Split, w.maxBytes())
}

func (w *GPXWriter) waypointBlock(reg *icons.Registry, wp *geo.Waypoint) []string {
	icon := strings.TrimSpace(wp.Style.OnxIcon)
	if icon == "" {
		icon = reg.Resolve(wp.Name, wp.Notes, wp.Style.MarkerSymbol).Icon
	}

	name := wp.Name
	if w.PrefixIconNames && icon != reg.DefaultIconName() {
		name = icon + " - " + name
	}
	if clean, changed := text.SanitizeName(name); changed {
		w.Changes.waypoint(name, clean)
		name = clean
	}

	color := firstNonEmpty(wp.Style.MarkerColor, wp.Style.Stroke)
	if color != "" {
		color = palette.Quantize(color, palette.Waypoint)
	} else {
		color = reg.WaypointColorFor(icon)
	}

	id := wp.ID
	if id == "" {
		id = geo.NewID()
	}
	desc := escapeXML(strings.Join([]string{
		"name=" + wp.Name,
		"notes=" + text.StripHTML(wp.Notes),
		"id=" + id,
		"color=" + color,
		"icon=" + icon,
	}, "\n"))

	block := []string{
		`  <wpt lat="` + formatCoord(wp.Lat) + `" lon="` + formatCoord(wp.Lon) + `">`,
		"    <name>" + escapeXML(name) + "</name>",
	}
	if w.Timestamps {
		block = append(block, "    <time>"+w.clock().Now().UTC().Format("2006-01-02T15:04:05Z")+"</time>")
	}
	return append(block,
		"    <desc>"+desc+"</desc>",
		"    <extensions>",
		"      <onx:icon>"+icon+"</onx:icon>",
		"      <onx:color>"+color+"</onx:color>",
		"    </extensions>",
		"  </wpt>",
	)
}

func (w *GPXWriter) trackBlock(t *geo.Track) []string {
	name := t.Name
	if clean, changed := text.SanitizeName(name); changed {
		w.Changes.track(name, clean)
		name = clean
	}

	color := palette.DefaultColor
	if t.Style.Stroke != "" {
		color = palette.Quantize(t.Style.Stroke, palette.Track)
	}
	style := palette.PatternToStyle(t.Style.Pattern)
	weight := palette.StrokeWidthToWeight(t.Style.StrokeWidth)

	id := t.ID
	if id == "" {
		id = geo.NewID()
	}
	desc := escapeXML(strings.Join([]string{
		"name=" + t.Name,
		"notes=" + text.StripHTML(t.Notes),
		"id=" + id,
		"color=" + color,
		"style=" + style,
		"weight=" + weight,
	}, "\n"))

	block := []string{
		"  <trk>",
		"    <name>" + escapeXML(name) + "</name>",
		"    <desc>" + desc + "</desc>",
		"    <extensions>",
		"      <onx:color>" + color + "</onx:color>",
		"      <onx:style>" + style + "</onx:style>",
		"      <onx:weight>" + weight + "</onx:weight>",
		"    </extensions>",
		"    <trkseg>",
	}
	for _, pt := range t.Points {
		block = append(block, `      <trkpt lat="`+formatCoord(pt.Lat)+`" lon="`+formatCoord(pt.Lon)+`">`)
		if pt.Ele != nil {
			block = append(block, "        <ele>"+formatCoord(*pt.Ele)+"</ele>")
		}
		if pt.TimeMS != nil {
			block = append(block, "        <time>"+geo.FormatEpochMS(*pt.TimeMS)+"</time>")
		}
		block = append(block, "      </trkpt>")
	}
	return append(block, "    </trkseg>", "  </trk>")
}

func (w *GPXWriter) registry() *icons.Registry {
	if w.Registry != nil {
		return w.Registry
	}
	return icons.Default()
}

func (w *GPXWriter) clock() clockwork.Clock {
	if w.Clock != nil {
		return w.Clock
	}
	return clockwork.NewRealClock()
}

func (w *GPXWriter) maxBytes() int {
	if w.MaxBytes > 0 {
		return w.MaxBytes
	}
	return DefaultMaxGPXBytes
}

func gpxHeader(folderName string) []string {
	return []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		gpxOpenTag,
		"  <metadata>",
		"    <name>" + escapeXML(folderName) + "</name>",
		"  </metadata>",
	}
}

// escapeXML escapes the three characters XML forbids in text content.
// Newlines stay literal so desc key=value blocks keep their line
// structure.
var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
