package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/pkg/geospatial"
)

const eps = 1e-9

func pt(lat, lon float64) domain.GeoPoint { return domain.GeoPoint{Lat: lat, Lon: lon} }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < eps }

var square = domain.Polygon{pt(0, 0), pt(0, 1), pt(1, 1), pt(1, 0)}

func TestHaversine_OneDegreeOfLongitudeAtEquator(t *testing.T) {
	got := geospatial.Haversine(0, 0, 0, 1)
	want := 6371.0 * math.Pi / 180
	if !almostEqual(got, want) {
		t.Errorf("expected %.9f km, got %.9f", want, got)
	}
}

func TestDistance_IdentityAndSymmetry(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.GeoPoint
	}{
		{"bilbao", pt(43.263, -2.935), pt(43.264, -2.934)},
		{"far apart", pt(40.4168, -3.7038), pt(41.3874, 2.1686)},
		{"southern hemisphere", pt(-33.86, 151.2), pt(-37.81, 144.96)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := geospatial.Distance(tt.a, tt.a); d != 0 {
				t.Errorf("distance to self should be 0, got %v", d)
			}
			ab := geospatial.Distance(tt.a, tt.b)
			ba := geospatial.Distance(tt.b, tt.a)
			if ab != ba {
				t.Errorf("distance not symmetric: %v vs %v", ab, ba)
			}
			if ab <= 0 {
				t.Errorf("distinct points should be apart, got %v", ab)
			}
		})
	}
}

func TestNearestOnSegment_Clamp(t *testing.T) {
	a, b := pt(0, 0), pt(0, 1)

	tests := []struct {
		name string
		p    domain.GeoPoint
		want domain.GeoPoint
	}{
		{"beyond b", pt(1, 2), b},
		{"before a", pt(0, -1), a},
		{"middle", pt(0.5, 0.5), pt(0, 0.5)},
		{"on segment", pt(0, 0.25), pt(0, 0.25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, d := geospatial.NearestOnSegment(tt.p, a, b)
			if !almostEqual(got.Lat, tt.want.Lat) || !almostEqual(got.Lon, tt.want.Lon) {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
			if want := geospatial.Distance(tt.p, got); !almostEqual(d, want) {
				t.Errorf("expected distance %v, got %v", want, d)
			}
		})
	}
}

func TestNearestOnSegment_Degenerate(t *testing.T) {
	a := pt(43.26, -2.93)
	p := pt(43.27, -2.92)

	got, d := geospatial.NearestOnSegment(p, a, a)
	if got != a {
		t.Fatalf("expected %+v, got %+v", a, got)
	}
	if d != geospatial.Distance(p, a) {
		t.Errorf("unexpected distance %v", d)
	}
}

func TestNearestOnSegment_MonotoneAwayFromSegment(t *testing.T) {
	a, b := pt(0, 0), pt(0, 1)
	prev := -1.0
	for _, lat := range []float64{0, 0.001, 0.01, 0.1, 0.5} {
		_, d := geospatial.NearestOnSegment(pt(lat, 0.5), a, b)
		if d <= prev {
			t.Fatalf("distance should grow with lat, got %v after %v", d, prev)
		}
		prev = d
	}
}

func TestInsidePolygon(t *testing.T) {
	tests := []struct {
		name string
		p    domain.GeoPoint
		ring domain.Polygon
		want bool
	}{
		{"center", pt(0.5, 0.5), square, true},
		{"outside", pt(2, 2), square, false},
		{"left of ring", pt(0.5, -0.5), square, false},
		{"closed ring", pt(0.5, 0.5), append(append(domain.Polygon{}, square...), square[0]), true},
		{"two vertices", pt(0, 0), domain.Polygon{pt(0, 0), pt(1, 1)}, false},
		{"empty", pt(0, 0), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geospatial.InsidePolygon(tt.p, tt.ring); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNearestOnPolygon_InsideIsZero(t *testing.T) {
	p := pt(0.25, 0.75)
	got, d := geospatial.NearestOnPolygon(p, square)
	if d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
	if got != p {
		t.Errorf("expected point itself, got %+v", got)
	}
}

func TestNearestOnPolygon_Outside(t *testing.T) {
	p := pt(0.5, 2)
	got, d := geospatial.NearestOnPolygon(p, square)
	if !almostEqual(got.Lat, 0.5) || !almostEqual(got.Lon, 1) {
		t.Fatalf("expected (0.5, 1), got %+v", got)
	}
	if want := geospatial.Distance(p, got); !almostEqual(d, want) {
		t.Errorf("expected %v, got %v", want, d)
	}
}

func TestNearestOnPolygon_EmptyRing(t *testing.T) {
	_, d := geospatial.NearestOnPolygon(pt(0, 0), nil)
	if !math.IsInf(d, 1) {
		t.Errorf("expected +Inf, got %v", d)
	}
}

func TestNearestOnPolygon_SingleVertex(t *testing.T) {
	v := pt(43.0, -2.0)
	p := pt(43.1, -2.0)
	got, d := geospatial.NearestOnPolygon(p, domain.Polygon{v})
	if got != v {
		t.Fatalf("expected %+v, got %+v", v, got)
	}
	if d != geospatial.Distance(p, v) {
		t.Errorf("unexpected distance %v", d)
	}
}
