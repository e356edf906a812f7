// Package dedupe collapses duplicate waypoints, tracks and polygons
// that accumulate when the same map bounces between export formats.
package dedupe

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/moltude/cairn/internal/geo"
)

// degreeMeters is the ground length of one degree of latitude.
const degreeMeters = 6371000 * math.Pi / 180

// pairIndex is a spatially indexed collection with a pairwise
// duplicate test over element indexes.
type pairIndex interface {
	// near returns candidate indexes close enough to i to be worth
	// testing, excluding i itself.
	near(i int) []int
	// match reports whether a and b are duplicates.
	match(a, b int) bool
}

// clusters partitions indexes 0..n-1 into duplicate groups and returns
// only the groups with more than one member, each in ascending order.
func clusters(x pairIndex, n int) [][]int {
	visited := make([]bool, n)
	var out [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true
		c := growCluster(x, i, visited)
		if len(c) > 1 {
			out = append(out, c)
		}
	}
	return out
}

// growCluster returns every index reachable from seed through the
// pairwise test. Taking the transitive closure keeps grouping
// independent of input order: a middle record bridges two records that
// alone would sit just outside each other's tolerance.
func growCluster(x pairIndex, seed int, visited []bool) []int {
	cluster := []int{seed}
	queue := []int{seed}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, j := range x.near(cur) {
			if visited[j] || !x.match(cur, j) {
				continue
			}
			visited[j] = true
			cluster = append(cluster, j)
			queue = append(queue, j)
		}
	}
	sort.Ints(cluster)
	return cluster
}

// geomEntry positions one record in a spatial index by its bounding
// rectangle in degree space.
type geomEntry struct {
	idx  int
	rect *rtreego.Rect
}

func (e *geomEntry) Bounds() *rtreego.Rect { return e.rect }

// searchEntries returns the indexes whose rectangles intersect rect,
// excluding self.
func searchEntries(tree *rtreego.Rtree, rect *rtreego.Rect, self int) []int {
	var out []int
	for _, sp := range tree.SearchIntersect(rect) {
		if e := sp.(*geomEntry); e.idx != self {
			out = append(out, e.idx)
		}
	}
	return out
}

// searchRect returns a query box around lon/lat spanning marginM meters
// in each direction. The longitude span widens with latitude so the box
// never undershoots the requested ground distance.
func searchRect(lon, lat, marginM float64) *rtreego.Rect {
	dLat := marginM / degreeMeters
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLon := marginM / (degreeMeters * cosLat)
	rect, err := rtreego.NewRect(rtreego.Point{lon - dLon, lat - dLat}, []float64{2 * dLon, 2 * dLat})
	if err != nil {
		panic(err)
	}
	return rect
}

// bboxRect returns the bounding box of a vertex list grown by marginM
// meters on every side.
func bboxRect(pts []geo.LonLat, marginM float64) *rtreego.Rect {
	minLon, minLat := pts[0].Lon, pts[0].Lat
	maxLon, maxLat := minLon, minLat
	for _, p := range pts[1:] {
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
	}

	dLat := marginM / degreeMeters
	cosLat := math.Cos((minLat + maxLat) / 2 * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLon := marginM / (degreeMeters * cosLat)

	rect, err := rtreego.NewRect(
		rtreego.Point{minLon - dLon, minLat - dLat},
		[]float64{maxLon - minLon + 2*dLon, maxLat - minLat + 2*dLat},
	)
	if err != nil {
		panic(err)
	}
	return rect
}

// removeItems drops every item whose ID is in the set, keeping the
// order of everything else.
func removeItems(doc *geo.Document, drop map[string]bool) {
	if len(drop) == 0 {
		return
	}
	kept := doc.Items[:0]
	for _, it := range doc.Items {
		if drop[it.GetID()] {
			continue
		}
		kept = append(kept, it)
	}
	doc.Items = kept
}

// dedupeIDs returns ids with duplicates, blanks and self removed,
// keeping first-occurrence order.
func dedupeIDs(self string, ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == self || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
