package usecases

const (
	minutesPerHour     = 60.0
	minutesPerDay      = 24 * minutesPerHour
	thousandthsToUnits = 1.0 / 1000
)

// PricingRules are the tunable constants of the estimation.
type PricingRules struct {
	WalkSpeedKmh       float64
	DriveSpeedKmh      float64
	FreeBookingMinutes float64
	VAT                float64
}

// DefaultPricingRules returns the rules published by the operator.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		WalkSpeedKmh:       5,
		DriveSpeedKmh:      25,
		FreeBookingMinutes: 15,
		VAT:                1.21,
	}
}
