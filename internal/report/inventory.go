package report

import (
	"strings"

	"github.com/moltude/cairn/internal/dedupe"
	"github.com/moltude/cairn/internal/geo"
)

// DocumentInventory returns item counts in the shape trace events and
// logs expect.
func DocumentInventory(doc *geo.Document) map[string]any {
	md := make(map[string]any, len(doc.Metadata))
	for k, v := range doc.Metadata {
		md[k] = v
	}
	return map[string]any{
		"folder_count":   len(doc.Folders),
		"waypoint_count": len(doc.Waypoints()),
		"track_count":    len(doc.Tracks()),
		"shape_count":    len(doc.Shapes()),
		"item_count":     len(doc.Items),
		"metadata":       md,
	}
}

// WaypointDedupInventory flattens a waypoint dedup report for trace
// events.
func WaypointDedupInventory(r *dedupe.WaypointReport) map[string]any {
	return map[string]any{
		"dedup_group_count":   r.GroupCount(),
		"dedup_dropped_count": r.DroppedCount(),
		"groups":              r.Groups,
	}
}

// ItemRef identifies one item inside a quality warning.
type ItemRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DuplicateName reports a name shared by several items, a hint that the
// dedup pass will have work to do.
type DuplicateName struct {
	Name  string    `json:"name"`
	Count int       `json:"count"`
	Items []ItemRef `json:"items"` // first three carriers
}

// CoordWarning flags a waypoint whose coordinates parse but are almost
// certainly wrong.
type CoordWarning struct {
	ItemRef
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Reason string  `json:"reason"`
}

// QualityWarnings collects pre-conversion data problems worth surfacing
// before anything is written.
type QualityWarnings struct {
	EmptyNames       []ItemRef       `json:"empty_names"`
	DuplicateNames   []DuplicateName `json:"duplicate_names"`
	SuspiciousCoords []CoordWarning  `json:"suspicious_coords"`
	EmptyTracks      []ItemRef       `json:"empty_tracks"`
}

// Total returns the number of individual warnings.
func (w *QualityWarnings) Total() int {
	return len(w.EmptyNames) + len(w.DuplicateNames) + len(w.SuspiciousCoords) + len(w.EmptyTracks)
}

// CheckDataQuality scans a document for empty or placeholder names,
// duplicated names, null-island and out-of-range waypoints, and tracks
// with no points or no length.
func CheckDataQuality(doc *geo.Document) *QualityWarnings {
	w := &QualityWarnings{}

	var nameOrder []string
	carriers := map[string][]ItemRef{}

	for _, item := range doc.Items {
		ref := ItemRef{Kind: itemKind(item), ID: item.GetID(), Name: item.GetName()}

		switch name := item.GetName(); {
		case name == "":
			ref.Name = "(empty)"
			w.EmptyNames = append(w.EmptyNames, ref)
		case isPlaceholderName(name):
			w.EmptyNames = append(w.EmptyNames, ref)
		}

		if name := item.GetName(); name != "" {
			if _, seen := carriers[name]; !seen {
				nameOrder = append(nameOrder, name)
			}
			carriers[name] = append(carriers[name], ref)
		}

		switch it := item.(type) {
		case *geo.Waypoint:
			if geo.NearNullIsland(it.Lon, it.Lat) {
				w.SuspiciousCoords = append(w.SuspiciousCoords, CoordWarning{
					ItemRef: ref, Lat: it.Lat, Lon: it.Lon,
					Reason: "Near (0,0) - possible default/invalid coordinate",
				})
			}
			if !geo.ValidLonLat(it.Lon, it.Lat) {
				w.SuspiciousCoords = append(w.SuspiciousCoords, CoordWarning{
					ItemRef: ref, Lat: it.Lat, Lon: it.Lon,
					Reason: "Out of valid range (-90..90, -180..180)",
				})
			}
		case *geo.Track:
			// A track whose points all sit on one spot draws nothing,
			// same as a track with no points at all.
			if geo.TrackLengthM(it.Points) == 0 {
				w.EmptyTracks = append(w.EmptyTracks, ref)
			}
		}
	}

	for _, name := range nameOrder {
		refs := carriers[name]
		if len(refs) < 2 {
			continue
		}
		shown := refs
		if len(shown) > 3 {
			shown = shown[:3]
		}
		w.DuplicateNames = append(w.DuplicateNames, DuplicateName{
			Name: name, Count: len(refs), Items: shown,
		})
	}

	return w
}

func isPlaceholderName(name string) bool {
	switch strings.ToLower(name) {
	case "untitled", "unnamed":
		return true
	}
	return false
}

func itemKind(item geo.Item) string {
	switch item.(type) {
	case *geo.Waypoint:
		return "Waypoint"
	case *geo.Track:
		return "Track"
	case *geo.Shape:
		return "Shape"
	}
	return "Item"
}
