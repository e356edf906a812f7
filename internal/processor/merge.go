package processor

import (
	"strings"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/trace"
)

// MergeDecision records how one onX id that appeared in both inputs was
// resolved.
type MergeDecision struct {
	OnxID   string `json:"onx_id"`
	Action  string `json:"action"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
}

// MergeReport summarizes what folding a KML export into a GPX export
// changed.
type MergeReport struct {
	Added     int             `json:"added"`
	Decisions []MergeDecision `json:"decisions,omitempty"`
}

// Merge folds overlay, a document read from an onX KML export, into
// base, the document read from the matching GPX export. Items pair up by
// onX id. Tracks keep their GPX geometry since only GPX carries
// elevation and time, and when the same id arrives as two different
// kinds the polygon wins since only KML carries rings. base is modified
// in place.
func Merge(base, overlay *geo.Document, tw *trace.Writer) *MergeReport {
	// GPX-only exports lack the areas folder.
	base.EnsureFolder(geo.ImportRootFolderID, "OnX Import", "")
	base.EnsureFolder(geo.ImportWaypointsFolderID, "Waypoints", geo.ImportRootFolderID)
	base.EnsureFolder(geo.ImportTracksFolderID, "Tracks", geo.ImportRootFolderID)
	base.EnsureFolder(geo.ImportShapesFolderID, "Areas", geo.ImportRootFolderID)

	byID := make(map[string]geo.Item, len(base.Items))
	for _, item := range base.Items {
		if oid := item.GetStyle().OnxID; oid != "" {
			byID[oid] = item
		}
	}

	rep := &MergeReport{}
	for _, item := range overlay.Items {
		oid := item.GetStyle().OnxID
		if oid == "" {
			base.AddItem(item)
			rep.Added++
			tw.Emit(trace.Event{"event": "merge.add", "reason": "no_onx_id", "type": itemKind(item)})
			continue
		}

		existing, ok := byID[oid]
		if !ok {
			base.AddItem(item)
			byID[oid] = item
			rep.Added++
			tw.Emit(trace.Event{"event": "merge.add", "reason": "new_onx_id", "onx_id": oid, "type": itemKind(item)})
			continue
		}

		if itemKind(existing) != itemKind(item) {
			var kept *geo.Shape
			var dropped geo.Item
			fromOverlay := false
			if s, isShape := existing.(*geo.Shape); isShape {
				kept, dropped = s, item
			} else if s, isShape := item.(*geo.Shape); isShape {
				kept, dropped = s, existing
				fromOverlay = true
			}

			if kept == nil {
				// Waypoint vs track with a shared id. Keep the GPX side.
				rep.Decisions = append(rep.Decisions, MergeDecision{
					OnxID: oid, Action: "ignore", Kept: itemKind(existing), Dropped: itemKind(item),
				})
				tw.Emit(trace.Event{
					"event": "merge.ignore", "onx_id": oid,
					"kept_type": itemKind(existing), "ignored_type": itemKind(item),
				})
				continue
			}

			// The GPX track often carries color and weight the polygon lacks.
			if track, isTrack := dropped.(*geo.Track); isTrack {
				if blank(kept.Notes) && !blank(track.Notes) {
					kept.Notes = track.Notes
				}
				ks := &kept.Style
				if blank(ks.OnxColor) && !blank(track.Style.OnxColor) {
					ks.OnxColor = track.Style.OnxColor
				}
				if blank(ks.OnxStyle) && !blank(track.Style.OnxStyle) {
					ks.OnxStyle = track.Style.OnxStyle
				}
				if blank(ks.OnxWeight) && !blank(track.Style.OnxWeight) {
					ks.OnxWeight = track.Style.OnxWeight
				}
			}

			if fromOverlay {
				base.AddItem(kept)
				byID[oid] = kept
			}
			removeItem(base, dropped)

			rep.Decisions = append(rep.Decisions, MergeDecision{
				OnxID: oid, Action: "prefer_polygon", Kept: "Shape", Dropped: itemKind(dropped),
			})
			tw.Emit(trace.Event{
				"event": "merge.prefer_polygon", "onx_id": oid,
				"kept_type": "Shape", "dropped_type": itemKind(dropped),
			})
			continue
		}

		// Same kind and same id. Keep the GPX item, fill gaps from KML.
		switch it := item.(type) {
		case *geo.Track:
			ex := existing.(*geo.Track)
			if blank(ex.Notes) && !blank(it.Notes) {
				ex.Notes = it.Notes
			}
			if blank(ex.Style.OnxColor) && !blank(it.Style.OnxColor) {
				ex.Style.OnxColor = it.Style.OnxColor
			}
		case *geo.Waypoint:
			ex := existing.(*geo.Waypoint)
			if blank(ex.Notes) && !blank(it.Notes) {
				ex.Notes = it.Notes
			}
			if blank(ex.Style.OnxIcon) && !blank(it.Style.OnxIcon) {
				ex.Style.OnxIcon = it.Style.OnxIcon
			}
			if blank(ex.Style.OnxColor) && !blank(it.Style.OnxColor) {
				ex.Style.OnxColor = it.Style.OnxColor
			}
		case *geo.Shape:
			ex := existing.(*geo.Shape)
			if len(ex.Rings) == 0 && len(it.Rings) > 0 {
				ex.Rings = it.Rings
			}
		}
	}

	if base.Metadata == nil {
		base.Metadata = make(map[string]any)
	}
	base.Metadata["merged_kml"] = true
	path, _ := overlay.Metadata["path"].(string)
	base.Metadata["kml_path"] = path
	return rep
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

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func removeItem(doc *geo.Document, target geo.Item) {
	for i, item := range doc.Items {
		if item == target {
			doc.Items = append(doc.Items[:i], doc.Items[i+1:]...)
			return
		}
	}
}
