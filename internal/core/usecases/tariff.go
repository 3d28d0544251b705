package usecases

import (
	"fmt"
	"math"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// Accumulator holds the units of the reservation currently open. The zero
// value is an empty accumulator, ready for the first leg of a reservation.
type Accumulator struct {
	units      domain.ReservationUnits
	row        int
	paused     bool
	pauseStart float64
}

// Step folds one computed leg into the accumulator. When the leg closes the
// reservation, the finished reservation is returned alongside a fresh
// accumulator; otherwise the returned reservation is nil.
func (a Accumulator) Step(leg domain.ComputedLeg, freeBookingMinutes float64) (Accumulator, *domain.Reservation) {
	u := a.units
	u.Minutes += leg.TimeCarToStop
	u.Kilometers += leg.DistanceCarToStop

	// Booking time is only billed for the walk to the first car.
	if a.row == 0 {
		u.BookUnits = math.Max(leg.TimeStartToCar-freeBookingMinutes, 0)
	}
	if a.paused {
		u.PauseUnits += (leg.TimestampMinutes + leg.TimeStartToCar) - a.pauseStart
	}
	if u.Minutes >= minutesPerHour {
		u.HourCap = 1
	}
	if u.Minutes >= minutesPerDay {
		u.DayCap = 1
	}

	if leg.CloseReservation {
		return Accumulator{}, &domain.Reservation{Tier: leg.Car.Model.Tier, Units: u}
	}

	return Accumulator{
		units:      u,
		row:        a.row + 1,
		paused:     true,
		pauseStart: leg.TimestampMinutes + leg.TimeStartToCar + leg.TimeCarToStop,
	}, nil
}

// Units returns the units accumulated so far.
func (a Accumulator) Units() domain.ReservationUnits {
	return a.units
}

// Reservations folds a reconstructed journey into its closed reservations.
func Reservations(journey []domain.ComputedLeg, rules PricingRules) []domain.Reservation {
	var (
		acc    Accumulator
		closed *domain.Reservation
		out    []domain.Reservation
	)
	for _, leg := range journey {
		acc, closed = acc.Step(leg, rules.FreeBookingMinutes)
		if closed != nil {
			out = append(out, *closed)
		}
	}
	return out
}

// PriceReservation applies one tariff to the units of a reservation. The
// result is in thousandths, VAT excluded.
func PriceReservation(u domain.ReservationUnits, t domain.Tariff) float64 {
	price := t.UnlockFee
	price += t.MinutePrice * u.Minutes
	price += t.KilometerPrice * math.Max(u.Kilometers-t.IncludedKilometers, 0)
	price += t.BookUnitPrice * u.BookUnits
	price += t.PauseUnitPrice * u.PauseUnits
	price += t.HourCapPrice * u.HourCap
	price += t.DayCapPrice * u.DayCap
	return price
}

// PriceReservations prices every reservation under both schemes using the
// table of its tier, and returns the totals with VAT applied. A reservation
// whose tier has no table fails the whole computation.
func PriceReservations(reservations []domain.Reservation, tables map[string]domain.TariffTable, vat float64) ([]domain.Reservation, domain.Prices, error) {
	scale := vat * thousandthsToUnits
	priced := make([]domain.Reservation, 0, len(reservations))

	var perMinute, perKilometer float64
	for _, r := range reservations {
		table, ok := tables[r.Tier]
		if !ok {
			return nil, domain.Prices{}, fmt.Errorf("tier %q: %w", r.Tier, domain.ErrUnknownTariffTier)
		}

		minute := PriceReservation(r.Units, table.PricingPerMinute)
		kilometer := PriceReservation(r.Units, table.PricingPerKilometer)
		perMinute += minute
		perKilometer += kilometer

		r.PricingPerMinute = minute * scale
		r.PricingPerKilometer = kilometer * scale
		priced = append(priced, r)
	}

	return priced, domain.Prices{
		PricingPerMinute:    perMinute * scale,
		PricingPerKilometer: perKilometer * scale,
	}, nil
}
