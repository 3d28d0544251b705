package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Polygon is a single outer ring. The last vertex may or may not repeat the first.
type Polygon []GeoPoint
