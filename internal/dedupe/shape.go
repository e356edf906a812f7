package dedupe

import (
	"fmt"
	"math"
	"strings"

	"github.com/dhconnelly/rtreego"

	"github.com/moltude/cairn/internal/geo"
)

const (
	// shapeEndpointM bounds how far matched endpoints and centroids may
	// drift between duplicate geometries.
	shapeEndpointM = 25.0

	// shapeDeviationM caps the mean vertex deviation of two resampled
	// lines that still count as the same course.
	shapeDeviationM = 20.0

	// Length, perimeter and area comparisons must agree within this
	// ratio window.
	shapeRatioLow  = 0.8
	shapeRatioHigh = 1.25

	// resamplePoints is the common density lines are resampled to
	// before the vertex-by-vertex comparison.
	resamplePoints = 32
)

// Shape grouping reasons recorded in reports.
const (
	ReasonSignature = "geometry_signature_match"
	ReasonResampled = "resampled_geometry_match"
	ReasonPolygon   = "polygon_shape_match"
)

// ShapeGroup is one merged duplicate cluster of tracks or polygons.
type ShapeGroup struct {
	Kind       string   `json:"kind"` // "track" or "polygon"
	KeptID     string   `json:"kept_id"`
	KeptName   string   `json:"kept_name"`
	DroppedIDs []string `json:"dropped_ids"`
	Reason     string   `json:"reason"`
}

// ShapeReport summarizes one geometry deduplication pass.
type ShapeReport struct {
	Groups []ShapeGroup `json:"groups"`
}

// GroupCount returns the number of merged clusters.
func (r *ShapeReport) GroupCount() int { return len(r.Groups) }

// DroppedCount returns how many geometries were folded away.
func (r *ShapeReport) DroppedCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.DroppedIDs)
	}
	return n
}

// Shapes collapses duplicate tracks and polygons in items; other item
// kinds pass through untouched. Geometry, not naming, decides: two
// lines are duplicates when they run the same course within tolerance
// in either direction, two polygons when their outlines agree in
// position and proportions. Exact coordinate matches short-circuit the
// tolerant tests, so re-imports that preserved every vertex merge even
// when a vendor resampled nothing. The survivor absorbs the dropped
// geometries' identities into its SourceIDs; both returned slices keep
// input order and the dropped geometries stay available for a
// side-channel output.
func Shapes(items []geo.Item) (kept, dropped []geo.Item, report *ShapeReport) {
	report = &ShapeReport{}
	droppedIDs := make(map[string]bool)

	var tracks []*geo.Track
	var polygons []*geo.Shape
	for _, it := range items {
		switch v := it.(type) {
		case *geo.Track:
			tracks = append(tracks, v)
		case *geo.Shape:
			polygons = append(polygons, v)
		}
	}
	dedupeTracks(tracks, report, droppedIDs)
	dedupePolygons(polygons, report, droppedIDs)

	kept = make([]geo.Item, 0, len(items))
	for _, it := range items {
		if droppedIDs[it.GetID()] {
			dropped = append(dropped, it)
		} else {
			kept = append(kept, it)
		}
	}
	return kept, dropped, report
}

// ApplyShapes deduplicates the document's geometries in place and
// returns the dropped items for the secondary output.
func ApplyShapes(doc *geo.Document) ([]geo.Item, *ShapeReport) {
	_, dropped, report := Shapes(doc.Items)
	ids := make(map[string]bool, len(dropped))
	for _, it := range dropped {
		ids[it.GetID()] = true
	}
	removeItems(doc, ids)
	return dropped, report
}

type trackIndex struct {
	tracks []*geo.Track
	pts    [][]geo.LonLat
	sigs   []string
	length []float64
	rects  []*rtreego.Rect
	tree   *rtreego.Rtree
}

func newTrackIndex(tracks []*geo.Track) *trackIndex {
	x := &trackIndex{
		tracks: tracks,
		pts:    make([][]geo.LonLat, len(tracks)),
		sigs:   make([]string, len(tracks)),
		length: make([]float64, len(tracks)),
		rects:  make([]*rtreego.Rect, len(tracks)),
		tree:   rtreego.NewTree(2, 25, 50),
	}
	for i, t := range tracks {
		pts := trackVertices(t)
		if len(pts) < 2 {
			continue
		}
		x.pts[i] = pts
		x.sigs[i] = lineSignature(pts)
		x.length[i] = polylineLengthM(pts)
		x.rects[i] = bboxRect(pts, 2*shapeEndpointM)
		x.tree.Insert(&geomEntry{idx: i, rect: x.rects[i]})
	}
	return x
}

func (x *trackIndex) near(i int) []int {
	if x.rects[i] == nil {
		return nil
	}
	return searchEntries(x.tree, x.rects[i], i)
}

// match tests two lines: identical fingerprints merge outright,
// otherwise the lines must have comparable length, endpoints that pair
// up in some orientation, and a small mean deviation once both are
// resampled to the same density.
func (x *trackIndex) match(a, b int) bool {
	pa, pb := x.pts[a], x.pts[b]
	if pa == nil || pb == nil {
		return false
	}
	if x.sigs[a] == x.sigs[b] {
		return true
	}
	if !ratioWithin(x.length[a], x.length[b]) {
		return false
	}
	reversed, ok := endpointOrientation(pa, pb)
	if !ok {
		return false
	}
	return meanDeviationM(pa, pb, reversed) <= shapeDeviationM
}

func (x *trackIndex) reason(cluster []int) string {
	for _, j := range cluster[1:] {
		if x.sigs[j] != x.sigs[cluster[0]] {
			return ReasonResampled
		}
	}
	return ReasonSignature
}

func (x *trackIndex) survivor(cluster []int) int {
	for _, j := range cluster {
		if strings.TrimSpace(x.tracks[j].Notes) != "" {
			return j
		}
	}
	for _, j := range cluster {
		if styledGeometry(&x.tracks[j].Style) {
			return j
		}
	}
	return cluster[0]
}

func dedupeTracks(tracks []*geo.Track, report *ShapeReport, dropped map[string]bool) {
	if len(tracks) < 2 {
		return
	}
	x := newTrackIndex(tracks)
	for _, cluster := range clusters(x, len(tracks)) {
		keep := tracks[x.survivor(cluster)]
		group := ShapeGroup{
			Kind:     "track",
			KeptID:   keep.ID,
			KeptName: keep.Name,
			Reason:   x.reason(cluster),
		}

		merged := append([]string{}, keep.SourceIDs...)
		for _, j := range cluster {
			t := tracks[j]
			if t == keep {
				continue
			}
			group.DroppedIDs = append(group.DroppedIDs, t.ID)
			dropped[t.ID] = true
			merged = append(merged, t.ID)
			merged = append(merged, t.SourceIDs...)
		}
		keep.SourceIDs = dedupeIDs(keep.ID, merged)
		report.Groups = append(report.Groups, group)
	}
}

type polygonIndex struct {
	shapes []*geo.Shape
	rings  [][]geo.LonLat
	sigs   []string
	areas  []float64
	perims []float64
	cents  []geo.LonLat
	rects  []*rtreego.Rect
	tree   *rtreego.Rtree
}

func newPolygonIndex(shapes []*geo.Shape) *polygonIndex {
	x := &polygonIndex{
		shapes: shapes,
		rings:  make([][]geo.LonLat, len(shapes)),
		sigs:   make([]string, len(shapes)),
		areas:  make([]float64, len(shapes)),
		perims: make([]float64, len(shapes)),
		cents:  make([]geo.LonLat, len(shapes)),
		rects:  make([]*rtreego.Rect, len(shapes)),
		tree:   rtreego.NewTree(2, 25, 50),
	}
	for i, s := range shapes {
		ring := outerRing(s)
		if ring == nil {
			continue
		}
		x.rings[i] = ring
		x.sigs[i] = ringSignature(ring)
		x.areas[i] = geo.RingAreaM2(ring)
		x.perims[i] = geo.RingPerimeterM(ring)
		x.cents[i] = geo.RingCentroid(ring)
		x.rects[i] = bboxRect(ring, 2*shapeEndpointM)
		x.tree.Insert(&geomEntry{idx: i, rect: x.rects[i]})
	}
	return x
}

func (x *polygonIndex) near(i int) []int {
	if x.rects[i] == nil {
		return nil
	}
	return searchEntries(x.tree, x.rects[i], i)
}

// match tests two polygons: identical outline fingerprints merge
// outright, otherwise the centroids must nearly coincide and area and
// perimeter must agree within the ratio window. Proportions rather
// than vertices are compared because a lossy round trip can resample a
// boundary beyond vertex-level recognition.
func (x *polygonIndex) match(a, b int) bool {
	if x.rings[a] == nil || x.rings[b] == nil {
		return false
	}
	if x.sigs[a] == x.sigs[b] {
		return true
	}
	ca, cb := x.cents[a], x.cents[b]
	if geo.DistanceM(ca.Lon, ca.Lat, cb.Lon, cb.Lat) > shapeEndpointM {
		return false
	}
	return ratioWithin(x.areas[a], x.areas[b]) && ratioWithin(x.perims[a], x.perims[b])
}

func (x *polygonIndex) reason(cluster []int) string {
	for _, j := range cluster[1:] {
		if x.sigs[j] != x.sigs[cluster[0]] {
			return ReasonPolygon
		}
	}
	return ReasonSignature
}

func (x *polygonIndex) survivor(cluster []int) int {
	for _, j := range cluster {
		if strings.TrimSpace(x.shapes[j].Notes) != "" {
			return j
		}
	}
	for _, j := range cluster {
		if styledGeometry(&x.shapes[j].Style) {
			return j
		}
	}
	return cluster[0]
}

func dedupePolygons(shapes []*geo.Shape, report *ShapeReport, dropped map[string]bool) {
	if len(shapes) < 2 {
		return
	}
	x := newPolygonIndex(shapes)
	for _, cluster := range clusters(x, len(shapes)) {
		keep := shapes[x.survivor(cluster)]
		group := ShapeGroup{
			Kind:     "polygon",
			KeptID:   keep.ID,
			KeptName: keep.Name,
			Reason:   x.reason(cluster),
		}

		merged := append([]string{}, keep.SourceIDs...)
		for _, j := range cluster {
			s := shapes[j]
			if s == keep {
				continue
			}
			group.DroppedIDs = append(group.DroppedIDs, s.ID)
			dropped[s.ID] = true
			merged = append(merged, s.ID)
			merged = append(merged, s.SourceIDs...)
		}
		keep.SourceIDs = dedupeIDs(keep.ID, merged)
		report.Groups = append(report.Groups, group)
	}
}

// styledGeometry reports deliberate line or fill styling.
func styledGeometry(s *geo.Style) bool {
	return s.Stroke != "" || s.OnxColor != "" || s.Pattern != "" || s.OnxStyle != ""
}

// trackVertices returns the track's plausible vertices.
func trackVertices(t *geo.Track) []geo.LonLat {
	pts := make([]geo.LonLat, 0, len(t.Points))
	for _, p := range t.Points {
		if geo.ValidLonLat(p.Lon, p.Lat) {
			pts = append(pts, geo.LonLat{Lon: p.Lon, Lat: p.Lat})
		}
	}
	return pts
}

// outerRing returns the shape's outer boundary, or nil when it has
// fewer than three plausible vertices.
func outerRing(s *geo.Shape) []geo.LonLat {
	if len(s.Rings) == 0 {
		return nil
	}
	var ring []geo.LonLat
	for _, v := range s.Rings[0] {
		if geo.ValidLonLat(v.Lon, v.Lat) {
			ring = append(ring, v)
		}
	}
	if len(ring) < 3 {
		return nil
	}
	return ring
}

// lineSignature is a fingerprint of a vertex sequence rounded to about
// ten centimeters, invariant to direction.
func lineSignature(pts []geo.LonLat) string {
	fwd := roundTokens(pts)
	a := strings.Join(fwd, ";")
	b := strings.Join(reverseTokens(fwd), ";")
	if b < a {
		return b
	}
	return a
}

// ringSignature is a fingerprint of a polygon outline, invariant to
// start vertex and winding direction.
func ringSignature(ring []geo.LonLat) string {
	tokens := roundTokens(ring)
	if len(tokens) > 1 && tokens[0] == tokens[len(tokens)-1] {
		tokens = tokens[:len(tokens)-1]
	}
	a := strings.Join(minRotation(tokens), ";")
	b := strings.Join(minRotation(reverseTokens(tokens)), ";")
	if b < a {
		return b
	}
	return a
}

func roundTokens(pts []geo.LonLat) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = fmt.Sprintf("%.6f,%.6f", p.Lon, p.Lat)
	}
	return out
}

func reverseTokens(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

// minRotation returns the lexicographically smallest rotation of a
// token ring.
func minRotation(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}
	best := 0
	for i := 1; i < len(tokens); i++ {
		if rotationLess(tokens, i, best) {
			best = i
		}
	}
	out := make([]string, 0, len(tokens))
	out = append(out, tokens[best:]...)
	out = append(out, tokens[:best]...)
	return out
}

func rotationLess(tokens []string, a, b int) bool {
	n := len(tokens)
	for i := 0; i < n; i++ {
		x, y := tokens[(a+i)%n], tokens[(b+i)%n]
		if x != y {
			return x < y
		}
	}
	return false
}

// ratioWithin reports whether two magnitudes agree within the shape
// ratio window.
func ratioWithin(a, b float64) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	r := a / b
	return r >= shapeRatioLow && r <= shapeRatioHigh
}

// endpointOrientation decides whether b runs alongside a forward or
// reversed, by pairing up endpoints.
func endpointOrientation(a, b []geo.LonLat) (reversed, ok bool) {
	aStart, aEnd := a[0], a[len(a)-1]
	bStart, bEnd := b[0], b[len(b)-1]
	if geo.DistanceM(aStart.Lon, aStart.Lat, bStart.Lon, bStart.Lat) <= shapeEndpointM &&
		geo.DistanceM(aEnd.Lon, aEnd.Lat, bEnd.Lon, bEnd.Lat) <= shapeEndpointM {
		return false, true
	}
	if geo.DistanceM(aStart.Lon, aStart.Lat, bEnd.Lon, bEnd.Lat) <= shapeEndpointM &&
		geo.DistanceM(aEnd.Lon, aEnd.Lat, bStart.Lon, bStart.Lat) <= shapeEndpointM {
		return true, true
	}
	return false, false
}

// meanDeviationM resamples both lines to a common density and returns
// the mean distance between corresponding vertices in meters.
func meanDeviationM(a, b []geo.LonLat, reversed bool) float64 {
	proj := geo.NewProjection(a[0].Lon, a[0].Lat)
	ra := resampleProjected(proj, a, resamplePoints)
	if reversed {
		b = reversePoints(b)
	}
	rb := resampleProjected(proj, b, resamplePoints)

	var total float64
	for i := range ra {
		total += math.Hypot(ra[i][0]-rb[i][0], ra[i][1]-rb[i][1])
	}
	return total / float64(len(ra))
}

func reversePoints(pts []geo.LonLat) []geo.LonLat {
	out := make([]geo.LonLat, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// polylineLengthM returns the length of a lon/lat polyline in meters.
func polylineLengthM(pts []geo.LonLat) float64 {
	p := geo.NewProjection(pts[0].Lon, pts[0].Lat)
	var total float64
	var px, py float64
	for i, v := range pts {
		x, y := p.Meters(v.Lon, v.Lat)
		if i > 0 {
			total += math.Hypot(x-px, y-py)
		}
		px, py = x, y
	}
	return total
}

// resampleProjected projects a polyline to meters and resamples it to n
// points evenly spaced by arc length.
func resampleProjected(p geo.Projection, pts []geo.LonLat, n int) [][2]float64 {
	xy := make([][2]float64, len(pts))
	for i, v := range pts {
		x, y := p.Meters(v.Lon, v.Lat)
		xy[i] = [2]float64{x, y}
	}

	var total float64
	cum := make([]float64, len(xy))
	for i := 1; i < len(xy); i++ {
		total += math.Hypot(xy[i][0]-xy[i-1][0], xy[i][1]-xy[i-1][1])
		cum[i] = total
	}

	out := make([][2]float64, n)
	if total == 0 {
		for i := range out {
			out[i] = xy[0]
		}
		return out
	}

	j := 0
	for i := 0; i < n; i++ {
		want := total * float64(i) / float64(n-1)
		for j < len(xy)-2 && cum[j+1] < want {
			j++
		}
		span := cum[j+1] - cum[j]
		t := 0.0
		if span > 0 {
			t = (want - cum[j]) / span
		}
		out[i] = [2]float64{
			xy[j][0] + (xy[j+1][0]-xy[j][0])*t,
			xy[j][1] + (xy[j+1][1]-xy[j][1])*t,
		}
	}
	return out
}
