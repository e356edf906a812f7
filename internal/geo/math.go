package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

const earthRadiusM = 6371000.0

// Projection maps lon/lat to meters on a plane tangent at the anchor.
//
// An equirectangular approximation is fine here: everything measured with
// it (duplicate detection, shape metrics) stays within a few kilometers
// of the anchor, where the error is far below the thresholds in use.
type Projection struct {
	lon0    float64
	lat0    float64
	cosLat0 float64
}

// NewProjection returns a projection anchored at the given point.
func NewProjection(lon, lat float64) Projection {
	return Projection{
		lon0:    lon,
		lat0:    lat,
		cosLat0: math.Cos(lat * math.Pi / 180.0),
	}
}

// Meters projects a lon/lat pair to x/y meters relative to the anchor.
func (p Projection) Meters(lon, lat float64) (x, y float64) {
	x = (lon - p.lon0) * p.cosLat0 * math.Pi / 180.0 * earthRadiusM
	y = (lat - p.lat0) * math.Pi / 180.0 * earthRadiusM
	return x, y
}

// DistanceM returns the approximate ground distance between two points
// in meters.
func DistanceM(lon1, lat1, lon2, lat2 float64) float64 {
	p := NewProjection(lon1, lat1)
	x, y := p.Meters(lon2, lat2)
	return math.Hypot(x, y)
}

// ValidLonLat reports whether a pair is a plausible WGS84 coordinate.
func ValidLonLat(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return false
	}
	return lon >= -180.0 && lon <= 180.0 && lat >= -90.0 && lat <= 90.0
}

// NearNullIsland reports coordinates suspiciously close to (0,0), which
// in exports almost always means a lost fix rather than a real position.
func NearNullIsland(lon, lat float64) bool {
	return math.Abs(lon) < 0.001 && math.Abs(lat) < 0.001
}

// TrackLengthM returns the length of a track in meters.
func TrackLengthM(points []TrackPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	p := NewProjection(points[0].Lon, points[0].Lat)
	coords := make([]geom.Coord, len(points))
	for i, pt := range points {
		x, y := p.Meters(pt.Lon, pt.Lat)
		coords[i] = geom.Coord{x, y}
	}

	return geom.NewLineString(geom.XY).MustSetCoords(coords).Length()
}

// RingAreaM2 returns the unsigned area of a polygon ring in square meters.
func RingAreaM2(ring []LonLat) float64 {
	if len(ring) < 3 {
		return 0
	}

	p := NewProjection(ring[0].Lon, ring[0].Lat)
	coords := projectRing(p, ring)

	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{coords})
	return math.Abs(poly.Area())
}

// RingPerimeterM returns the perimeter of a polygon ring in meters.
func RingPerimeterM(ring []LonLat) float64 {
	if len(ring) < 2 {
		return 0
	}

	p := NewProjection(ring[0].Lon, ring[0].Lat)
	coords := projectRing(p, ring)

	return geom.NewLineString(geom.XY).MustSetCoords(coords).Length()
}

// projectRing projects a ring to meters and closes it explicitly.
func projectRing(p Projection, ring []LonLat) []geom.Coord {
	coords := make([]geom.Coord, 0, len(ring)+1)
	for _, v := range ring {
		x, y := p.Meters(v.Lon, v.Lat)
		coords = append(coords, geom.Coord{x, y})
	}
	if first, last := ring[0], ring[len(ring)-1]; first != last {
		coords = append(coords, coords[0])
	}
	return coords
}

// RingCentroid returns the vertex mean of a ring in lon/lat.
func RingCentroid(ring []LonLat) LonLat {
	if len(ring) == 0 {
		return LonLat{}
	}

	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}

	var sumLon, sumLat float64
	for _, v := range ring[:n] {
		sumLon += v.Lon
		sumLat += v.Lat
	}
	return LonLat{Lon: sumLon / float64(n), Lat: sumLat / float64(n)}
}
