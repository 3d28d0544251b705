package geospatial

import (
	"math"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// NearestOnSegment returns the point of segment [a, b] closest to p and its
// great-circle distance from p in kilometres.
//
// The projection parameter is computed on (lon, lat) treated as a flat plane,
// which only holds at city scale. A degenerate segment (a == b) resolves to a.
func NearestOnSegment(p, a, b domain.GeoPoint) (domain.GeoPoint, float64) {
	abX, abY := b.Lon-a.Lon, b.Lat-a.Lat
	apX, apY := p.Lon-a.Lon, p.Lat-a.Lat

	lenSq := abX*abX + abY*abY
	t := 0.0
	if lenSq != 0 {
		t = (apX*abX + apY*abY) / lenSq
	}
	t = math.Max(0, math.Min(1, t))

	closest := domain.GeoPoint{
		Lat: a.Lat + abY*t,
		Lon: a.Lon + abX*t,
	}
	return closest, Distance(p, closest)
}

// InsidePolygon reports whether p lies inside ring using even-odd ray casting.
// Rings with fewer than three vertices contain nothing.
func InsidePolygon(p domain.GeoPoint, ring domain.Polygon) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lon < (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lon {
			inside = !inside
		}
	}
	return inside
}

// NearestOnPolygon returns the boundary point of ring closest to p, or p itself
// with distance 0 when p is inside. Edges are taken cyclically, so the ring
// does not need to repeat its first vertex. An empty ring yields +Inf.
func NearestOnPolygon(p domain.GeoPoint, ring domain.Polygon) (domain.GeoPoint, float64) {
	if InsidePolygon(p, ring) {
		return p, 0
	}

	var closest domain.GeoPoint
	shortest := math.Inf(1)
	for i := range ring {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		c, d := NearestOnSegment(p, a, b)
		if d < shortest {
			closest = c
			shortest = d
		}
	}
	return closest, shortest
}
