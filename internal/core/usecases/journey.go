package usecases

import (
	"fmt"
	"math"
	"time"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/pkg/geospatial"
)

// Reconstruct decides, leg by leg, which car is driven, where it is parked and
// how long each walking and driving segment takes. Leg i only depends on the
// legs before it. The last leg always closes the open reservation.
func Reconstruct(legs []domain.Leg, vehicles []domain.Vehicle, zones []domain.ParkingZone, rules PricingRules) ([]domain.ComputedLeg, error) {
	journey := make([]domain.ComputedLeg, 0, len(legs))

	for i, leg := range legs {
		var prev *domain.ComputedLeg
		if i > 0 {
			prev = &journey[i-1]
		}

		computed, err := computeLeg(leg, prev, vehicles, zones, rules)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		computed.CloseReservation = i == len(legs)-1 || computed.EndInAParkingZone
		journey = append(journey, computed)
	}

	return journey, nil
}

func computeLeg(leg domain.Leg, prev *domain.ComputedLeg, vehicles []domain.Vehicle, zones []domain.ParkingZone, rules PricingRules) (domain.ComputedLeg, error) {
	out := domain.ComputedLeg{
		TimestampMinutes: minutesSinceEpoch(leg.Timestamp),
		Start:            leg.Start,
		End:              leg.End,
	}

	// A car left outside a parking zone is still held by the traveller.
	if prev != nil && !prev.EndInAParkingZone {
		out.Car = prev.Car
		out.Source = domain.SourceReused
		out.CarStart = prev.End
	} else {
		car, walk, ok := nearestCar(leg.Start, vehicles)
		if !ok {
			return out, domain.ErrNoEligibleVehicle
		}
		out.Car = car
		out.Source = domain.SourceAssigned
		out.CarStart = car.Location
		out.DistanceCarToStart = walk
	}

	stop, parkingDistance, ok := nearestParking(leg.End, zones)
	if !ok {
		return out, domain.ErrNoEligibleParkingZone
	}
	out.Stop = stop
	out.EndInAParkingZone = parkingDistance == 0

	walkPerMinute := rules.WalkSpeedKmh / minutesPerHour
	drivePerMinute := rules.DriveSpeedKmh / minutesPerHour

	out.TimeStartToCar = out.DistanceCarToStart / walkPerMinute
	out.DistanceCarToStop = geospatial.Distance(out.CarStart, leg.End)
	out.TimeCarToStop = out.DistanceCarToStop / drivePerMinute
	out.DistanceStopToDst = geospatial.Distance(stop, leg.End)
	out.TimeStopToDst = out.DistanceStopToDst / walkPerMinute

	return out, nil
}

// nearestCar scans the fleet for the closest car. Ties keep the first one seen.
func nearestCar(p domain.GeoPoint, vehicles []domain.Vehicle) (domain.Vehicle, float64, bool) {
	best := -1
	shortest := math.Inf(1)
	for i, v := range vehicles {
		if !v.IsCar() {
			continue
		}
		if d := geospatial.Distance(p, v.Location); d < shortest {
			best = i
			shortest = d
		}
	}
	if best < 0 {
		return domain.Vehicle{}, 0, false
	}
	return vehicles[best], shortest, true
}

// nearestParking returns the closest point of any parking polygon, across all
// zones. A point inside a polygon is its own nearest point, at distance 0.
func nearestParking(p domain.GeoPoint, zones []domain.ParkingZone) (domain.GeoPoint, float64, bool) {
	var closest domain.GeoPoint
	shortest := math.Inf(1)
	found := false
	for _, z := range zones {
		if !z.IsParking() {
			continue
		}
		for _, ring := range z.Polygons {
			if c, d := geospatial.NearestOnPolygon(p, ring); d < shortest {
				closest = c
				shortest = d
				found = true
			}
		}
	}
	return closest, shortest, found
}

func minutesSinceEpoch(t time.Time) float64 {
	return float64(t.UnixMilli()) / float64(time.Minute/time.Millisecond)
}
