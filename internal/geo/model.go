// Package geo holds the canonical in-memory map model shared by both
// conversion directions, plus coordinate and geometry helpers.
package geo

import (
	"crypto/rand"
	"encoding/hex"
)

// Style preserves source-specific presentation so a round trip keeps
// everything the destination format can carry.
type Style struct {
	// onX side
	OnxIcon   string
	OnxColor  string // rgba(r,g,b,a)
	OnxStyle  string // solid|dash|dot
	OnxWeight string // "4.0"|"6.0"
	OnxID     string

	// CalTopo side
	MarkerSymbol string
	MarkerColor  string // #RRGGBB
	Stroke       string // #RRGGBB
	StrokeWidth  float64
	Pattern      string // solid|dash|dot
}

// Folder groups items; onX folders map to CalTopo folders one to one.
type Folder struct {
	ID       string
	Name     string
	ParentID string
}

// Scaffold folder ids the onX readers organize items under. onX exports
// carry no folders of their own, so imports get this fixed structure. The
// root exists only for grouping and is dropped again on CalTopo export.
const (
	ImportRootFolderID      = "onx_import"
	ImportWaypointsFolderID = "onx_waypoints"
	ImportTracksFolderID    = "onx_tracks"
	ImportShapesFolderID    = "onx_shapes"
)

// Waypoint is a single point of interest.
type Waypoint struct {
	ID        string
	FolderID  string
	Name      string
	Lon       float64
	Lat       float64
	Notes     string
	Style     Style
	SourceIDs []string
}

// TrackPoint is one vertex of a track. Elevation and epoch-millisecond
// time are kept only when the source provided them.
type TrackPoint struct {
	Lon    float64
	Lat    float64
	Ele    *float64
	TimeMS *int64
}

// Track is an ordered polyline.
type Track struct {
	ID        string
	FolderID  string
	Name      string
	Points    []TrackPoint
	Notes     string
	Style     Style
	SourceIDs []string
}

// LonLat is a polygon ring vertex.
type LonLat struct {
	Lon float64
	Lat float64
}

// Shape is a polygon; the first ring is the outer boundary.
type Shape struct {
	ID        string
	FolderID  string
	Name      string
	Rings     [][]LonLat
	Notes     string
	Style     Style
	SourceIDs []string
}

// Item is a waypoint, track or shape stored in a Document.
type Item interface {
	GetID() string
	GetName() string
	GetFolderID() string
	GetStyle() *Style
}

func (w *Waypoint) GetID() string       { return w.ID }
func (w *Waypoint) GetName() string     { return w.Name }
func (w *Waypoint) GetFolderID() string { return w.FolderID }
func (w *Waypoint) GetStyle() *Style    { return &w.Style }

func (t *Track) GetID() string       { return t.ID }
func (t *Track) GetName() string     { return t.Name }
func (t *Track) GetFolderID() string { return t.FolderID }
func (t *Track) GetStyle() *Style    { return &t.Style }

func (s *Shape) GetID() string       { return s.ID }
func (s *Shape) GetName() string     { return s.Name }
func (s *Shape) GetFolderID() string { return s.FolderID }
func (s *Shape) GetStyle() *Style    { return &s.Style }

// Document is the canonical representation of a user map. Item order is
// preserved end to end because onX shows items in file order.
type Document struct {
	Folders  []*Folder
	Items    []Item
	Metadata map[string]any
}

// NewDocument returns an empty document with initialized metadata.
func NewDocument() *Document {
	return &Document{Metadata: make(map[string]any)}
}

// GetFolder returns the folder with the given id, or nil.
func (d *Document) GetFolder(id string) *Folder {
	for _, f := range d.Folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// EnsureFolder returns the existing folder with the given id or appends
// a new one.
func (d *Document) EnsureFolder(id, name, parentID string) *Folder {
	if f := d.GetFolder(id); f != nil {
		return f
	}
	f := &Folder{ID: id, Name: name, ParentID: parentID}
	d.Folders = append(d.Folders, f)
	return f
}

// AddItem appends an item, keeping input order.
func (d *Document) AddItem(item Item) {
	d.Items = append(d.Items, item)
}

// Waypoints returns the document's waypoints in order.
func (d *Document) Waypoints() []*Waypoint {
	var out []*Waypoint
	for _, it := range d.Items {
		if w, ok := it.(*Waypoint); ok {
			out = append(out, w)
		}
	}
	return out
}

// Tracks returns the document's tracks in order.
func (d *Document) Tracks() []*Track {
	var out []*Track
	for _, it := range d.Items {
		if t, ok := it.(*Track); ok {
			out = append(out, t)
		}
	}
	return out
}

// Shapes returns the document's shapes in order.
func (d *Document) Shapes() []*Shape {
	var out []*Shape
	for _, it := range d.Items {
		if s, ok := it.(*Shape); ok {
			out = append(out, s)
		}
	}
	return out
}

// NewID returns an opaque random identifier for items the source did not
// assign one to.
func NewID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "cairn-00000000"
	}
	return "cairn-" + hex.EncodeToString(b[:])
}
