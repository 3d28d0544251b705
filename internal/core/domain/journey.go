package domain

import "time"

// VehicleSource tells how a leg got its car.
type VehicleSource int

const (
	// SourceAssigned means the nearest eligible car was picked for the leg.
	SourceAssigned VehicleSource = iota
	// SourceReused means the previous leg's car is still held, no walk needed.
	SourceReused
)

func (s VehicleSource) String() string {
	if s == SourceReused {
		return "reused"
	}
	return "assigned"
}

// ComputedLeg is a Leg enriched with the vehicle, parking and timing decisions.
// Distances are kilometres and durations are minutes.
type ComputedLeg struct {
	TimestampMinutes float64
	Start            GeoPoint
	Stop             GeoPoint
	End              GeoPoint
	Car              Vehicle
	Source           VehicleSource
	CarStart         GeoPoint

	DistanceCarToStart float64
	TimeStartToCar     float64
	DistanceCarToStop  float64
	TimeCarToStop      float64
	DistanceStopToDst  float64
	TimeStopToDst      float64

	EndInAParkingZone bool
	CloseReservation  bool
}

// ReservationUnits are the billable quantities of a single reservation.
type ReservationUnits struct {
	Minutes    float64 `json:"minutes"`
	Kilometers float64 `json:"kilometers"`
	BookUnits  float64 `json:"book_units"`
	PauseUnits float64 `json:"pause_units"`
	HourCap    float64 `json:"hour_cap"`
	DayCap     float64 `json:"day_cap"`
}

// Reservation is one closed span of continuous use of a car.
type Reservation struct {
	Tier                string           `json:"tier"`
	Units               ReservationUnits `json:"units"`
	PricingPerMinute    float64          `json:"pricing_per_minute"`
	PricingPerKilometer float64          `json:"pricing_per_kilometer"`
}

// Estimate is the outcome of one cost estimation request.
type Estimate struct {
	ID           string        `json:"id"`
	BestChoice   Scheme        `json:"best_choice"`
	Prices       Prices        `json:"prices"`
	Reservations []Reservation `json:"reservations"`
	Legs         []Leg         `json:"legs,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
