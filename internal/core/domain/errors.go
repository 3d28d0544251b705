package domain

import "errors"

// Estimation failures. Adapters wrap these with %w; the HTTP layer maps them
// to status codes with errors.Is.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNoEligibleVehicle     = errors.New("no eligible vehicle")
	ErrNoEligibleParkingZone = errors.New("no eligible parking zone")
	ErrUnknownTariffTier     = errors.New("unknown tariff tier")
	ErrDataProvider          = errors.New("data provider failure")
	ErrNotFound              = errors.New("not found")
)
