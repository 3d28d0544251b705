package domain

import "time"

// Scheme identifies one of the two competing tariff models.
type Scheme string

const (
	SchemePerMinute    Scheme = "pricingPerMinute"
	SchemePerKilometer Scheme = "pricingPerKilometer"
)

// Tariff holds the unit prices of one scheme, in thousandths of the currency unit.
type Tariff struct {
	UnlockFee          float64 `json:"unlock_fee"`
	MinutePrice        float64 `json:"minute_price"`
	KilometerPrice     float64 `json:"kilometer_price"`
	IncludedKilometers float64 `json:"included_kilometers"`
	BookUnitPrice      float64 `json:"book_unit_price"`
	PauseUnitPrice     float64 `json:"pause_unit_price"`
	HourCapPrice       float64 `json:"hour_cap_price"`
	DayCapPrice        float64 `json:"day_cap_price"`
}

// TariffTable is the pair of schemes published for one vehicle tier.
type TariffTable struct {
	Tier                string    `json:"tier"`
	PricingPerMinute    Tariff    `json:"pricing_per_minute"`
	PricingPerKilometer Tariff    `json:"pricing_per_kilometer"`
	FetchedAt           time.Time `json:"fetched_at"`
}

// For returns the tariff of the given scheme.
func (t TariffTable) For(s Scheme) Tariff {
	if s == SchemePerMinute {
		return t.PricingPerMinute
	}
	return t.PricingPerKilometer
}

// Prices are trip totals per scheme, VAT included, in currency units.
type Prices struct {
	PricingPerMinute    float64 `json:"pricing_per_minute"`
	PricingPerKilometer float64 `json:"pricing_per_kilometer"`
}

// BestChoice picks per-minute only when it is strictly cheaper.
func (p Prices) BestChoice() Scheme {
	if p.PricingPerMinute < p.PricingPerKilometer {
		return SchemePerMinute
	}
	return SchemePerKilometer
}
