package dedupe

import (
	"sort"
	"strings"

	"github.com/dhconnelly/rtreego"

	"github.com/moltude/cairn/internal/geo"
	"github.com/moltude/cairn/internal/icons"
	"github.com/moltude/cairn/internal/text"
)

const (
	// waypointDistanceM is how close two waypoints must sit to be
	// duplicate candidates at all.
	waypointDistanceM = 10.0

	// titleRatioMin is the similarity floor for the fuzzy title tier.
	titleRatioMin = 0.9

	// notesRatioMin guards the fuzzy tier against merging waypoints
	// whose descriptions clearly disagree.
	notesRatioMin = 0.5
)

// Waypoint grouping reasons recorded in reports.
const (
	ReasonExactTitle = "proximity+exact_title"
	ReasonFuzzyTitle = "proximity+fuzzy_title"
)

// WaypointGroup is one merged duplicate cluster.
type WaypointGroup struct {
	KeptID     string   `json:"kept_id"`
	KeptName   string   `json:"kept_name"`
	DroppedIDs []string `json:"dropped_ids"`
	Reason     string   `json:"reason"`

	// Conflicts lists style values the cluster disagreed on, keyed by
	// field, so a merge that discarded styling stays auditable.
	Conflicts map[string][]string `json:"conflicts,omitempty"`
}

// WaypointReport summarizes one waypoint deduplication pass.
type WaypointReport struct {
	Groups []WaypointGroup `json:"groups"`
}

// GroupCount returns the number of merged clusters.
func (r *WaypointReport) GroupCount() int { return len(r.Groups) }

// DroppedCount returns how many waypoints were folded away.
func (r *WaypointReport) DroppedCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.DroppedIDs)
	}
	return n
}

// Waypoints collapses duplicate waypoints and reports every merge. Two
// waypoints are duplicates when they sit within a few meters of each
// other and their titles agree, exactly or within a high similarity
// ratio; fuzzy title matches additionally require that the notes do not
// clearly disagree. The survivor absorbs the dropped waypoints'
// identities into its SourceIDs; both returned slices keep input order
// and the dropped records stay available for auditing. Running the pass
// again on the kept slice drops nothing.
func Waypoints(wps []*geo.Waypoint) (kept, dropped []*geo.Waypoint, report *WaypointReport) {
	report = &WaypointReport{}
	kept = make([]*geo.Waypoint, 0, len(wps))
	if len(wps) < 2 {
		return append(kept, wps...), nil, report
	}

	x := newWaypointIndex(wps)
	droppedIDs := make(map[string]bool)
	for _, cluster := range clusters(x, len(wps)) {
		report.Groups = append(report.Groups, x.merge(cluster, droppedIDs))
	}

	for _, w := range wps {
		if droppedIDs[w.ID] {
			dropped = append(dropped, w)
		} else {
			kept = append(kept, w)
		}
	}
	return kept, dropped, report
}

// ApplyWaypoints deduplicates the document's waypoints in place,
// removing the dropped records from it.
func ApplyWaypoints(doc *geo.Document) *WaypointReport {
	_, dropped, report := Waypoints(doc.Waypoints())
	ids := make(map[string]bool, len(dropped))
	for _, w := range dropped {
		ids[w.ID] = true
	}
	removeItems(doc, ids)
	return report
}

type waypointIndex struct {
	wps    []*geo.Waypoint
	titles []string
	notes  []string
	tree   *rtreego.Rtree
}

func newWaypointIndex(wps []*geo.Waypoint) *waypointIndex {
	x := &waypointIndex{
		wps:    wps,
		titles: make([]string, len(wps)),
		notes:  make([]string, len(wps)),
		tree:   rtreego.NewTree(2, 25, 50),
	}
	for i, w := range wps {
		x.titles[i] = text.NormalizeKey(w.Name)
		x.notes[i] = text.NormalizeKey(w.Notes)
		if geo.ValidLonLat(w.Lon, w.Lat) {
			x.tree.Insert(&geomEntry{idx: i, rect: rtreego.Point{w.Lon, w.Lat}.ToRect(1e-7)})
		}
	}
	return x
}

func (x *waypointIndex) near(i int) []int {
	w := x.wps[i]
	if !geo.ValidLonLat(w.Lon, w.Lat) {
		return nil
	}
	return searchEntries(x.tree, searchRect(w.Lon, w.Lat, waypointDistanceM), i)
}

// match is the pairwise duplicate test: proximity plus an exact or
// fuzzy title tier.
func (x *waypointIndex) match(a, b int) bool {
	wa, wb := x.wps[a], x.wps[b]
	if geo.DistanceM(wa.Lon, wa.Lat, wb.Lon, wb.Lat) > waypointDistanceM {
		return false
	}
	if x.titles[a] == x.titles[b] {
		return true
	}
	if text.SequenceRatio(x.titles[a], x.titles[b]) < titleRatioMin {
		return false
	}
	na, nb := x.notes[a], x.notes[b]
	if na == "" || nb == "" {
		return true
	}
	return text.SequenceRatio(na, nb) >= notesRatioMin
}

// merge folds a cluster into its survivor and returns the group record.
func (x *waypointIndex) merge(cluster []int, dropped map[string]bool) WaypointGroup {
	keep := x.wps[x.survivor(cluster)]
	group := WaypointGroup{
		KeptID:    keep.ID,
		KeptName:  keep.Name,
		Reason:    ReasonExactTitle,
		Conflicts: x.conflicts(cluster),
	}

	merged := append([]string{}, keep.SourceIDs...)
	for _, j := range cluster {
		w := x.wps[j]
		if x.titles[j] != x.titles[cluster[0]] {
			group.Reason = ReasonFuzzyTitle
		}
		if w == keep {
			continue
		}
		group.DroppedIDs = append(group.DroppedIDs, w.ID)
		dropped[w.ID] = true
		merged = append(merged, w.ID)
		merged = append(merged, w.SourceIDs...)
	}
	keep.SourceIDs = dedupeIDs(keep.ID, merged)
	return group
}

// survivor prefers a waypoint with notes, then one with deliberate
// styling, then the earliest in document order.
func (x *waypointIndex) survivor(cluster []int) int {
	for _, j := range cluster {
		if strings.TrimSpace(x.wps[j].Notes) != "" {
			return j
		}
	}
	for _, j := range cluster {
		if styledWaypoint(x.wps[j]) {
			return j
		}
	}
	return cluster[0]
}

// conflicts collects style values the cluster disagreed on so the
// report shows what the survivor's style overrode.
func (x *waypointIndex) conflicts(cluster []int) map[string][]string {
	fields := map[string]func(*geo.Waypoint) string{
		"onx_icons":      func(w *geo.Waypoint) string { return w.Style.OnxIcon },
		"onx_colors":     func(w *geo.Waypoint) string { return w.Style.OnxColor },
		"marker_symbols": func(w *geo.Waypoint) string { return w.Style.MarkerSymbol },
		"marker_colors":  func(w *geo.Waypoint) string { return w.Style.MarkerColor },
	}

	out := make(map[string][]string)
	for name, get := range fields {
		seen := make(map[string]bool)
		var distinct []string
		for _, j := range cluster {
			v := get(x.wps[j])
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			distinct = append(distinct, v)
		}
		if len(distinct) > 1 {
			sort.Strings(distinct)
			out[name] = distinct
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// styledWaypoint reports whether the waypoint carries styling a user
// chose rather than defaults a writer would assign anyway.
func styledWaypoint(w *geo.Waypoint) bool {
	s := w.Style
	if s.OnxIcon != "" && s.OnxIcon != icons.DefaultIcon {
		return true
	}
	if s.OnxColor != "" || s.MarkerColor != "" {
		return true
	}
	return s.MarkerSymbol != "" && !genericSymbol(s.MarkerSymbol)
}

func genericSymbol(symbol string) bool {
	sym := strings.ToLower(strings.TrimSpace(symbol))
	for _, g := range icons.DefaultGenericSymbols() {
		if sym == g {
			return true
		}
	}
	return false
}
