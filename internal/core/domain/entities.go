package domain

import (
	"time"
)

const (
	// ModelTypeCar is the only vehicle model type that can be booked for a leg.
	ModelTypeCar = "car"
	// GeofencingParking marks the geozones where a reservation may end.
	GeofencingParking = "parking"
)

// VehicleModel describes the kind of shared vehicle and its pricing tier.
type VehicleModel struct {
	Type string `json:"type"`
	Tier string `json:"tier"`
}

// Vehicle is one entry of the fleet snapshot.
type Vehicle struct {
	ID       string       `json:"id"`
	Model    VehicleModel `json:"model"`
	Location GeoPoint     `json:"location"`
}

// IsCar reports whether the vehicle can be assigned to a leg.
func (v Vehicle) IsCar() bool {
	return v.Model.Type == ModelTypeCar
}

// ParkingZone is a geofenced area. Its geometry may be several disjoint polygons.
type ParkingZone struct {
	ID             string    `json:"id,omitempty"`
	GeofencingType string    `json:"geofencing_type"`
	Polygons       []Polygon `json:"polygons"`
}

// IsParking reports whether a reservation may end inside the zone.
func (z ParkingZone) IsParking() bool {
	return z.GeofencingType == GeofencingParking
}

// Leg is one step of a planned trip, in chronological order.
type Leg struct {
	Timestamp time.Time `json:"timestamp"`
	Start     GeoPoint  `json:"start"`
	End       GeoPoint  `json:"end"`
}
