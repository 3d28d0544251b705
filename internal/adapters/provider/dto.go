package provider

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// flexString accepts both JSON strings and numbers; the operator sends tiers
// and ids either way.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type vehicleDTO struct {
	ID                flexString `json:"id"`
	LocationLatitude  float64    `json:"locationLatitude"`
	LocationLongitude float64    `json:"locationLongitude"`
	Model             struct {
		Type string     `json:"type"`
		Tier flexString `json:"tier"`
	} `json:"model"`
}

func (v vehicleDTO) toDomain() domain.Vehicle {
	return domain.Vehicle{
		ID: string(v.ID),
		Model: domain.VehicleModel{
			Type: strings.ToLower(strings.TrimSpace(v.Model.Type)),
			Tier: strings.TrimSpace(string(v.Model.Tier)),
		},
		Location: domain.GeoPoint{Lat: v.LocationLatitude, Lon: v.LocationLongitude},
	}
}

type geozoneDTO struct {
	ID             flexString `json:"id"`
	GeofencingType string     `json:"geofencingType"`
	Geom           struct {
		Geometry struct {
			// multipolygon: polygons, rings, [longitude, latitude] positions
			Coordinates [][][][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"geom"`
}

func (z geozoneDTO) toDomain() domain.ParkingZone {
	zone := domain.ParkingZone{
		ID:             string(z.ID),
		GeofencingType: z.GeofencingType,
	}
	for _, polygon := range z.Geom.Geometry.Coordinates {
		for _, ring := range polygon {
			zone.Polygons = append(zone.Polygons, ringToPolygon(ring))
		}
	}
	return zone
}

// ringToPolygon is the one place where GeoJSON [lon, lat] order is turned
// into GeoPoint. Positions with fewer than two values are dropped.
func ringToPolygon(ring [][]float64) domain.Polygon {
	poly := make(domain.Polygon, 0, len(ring))
	for _, pos := range ring {
		if len(pos) < 2 {
			continue
		}
		poly = append(poly, domain.GeoPoint{Lat: pos[1], Lon: pos[0]})
	}
	return poly
}

type tariffDTO struct {
	UnlockFee          float64 `json:"unlockFee"`
	MinutePrice        float64 `json:"minutePrice"`
	KilometerPrice     float64 `json:"kilometerPrice"`
	IncludedKilometers float64 `json:"includedKilometers"`
	BookUnitPrice      float64 `json:"bookUnitPrice"`
	PauseUnitPrice     float64 `json:"pauseUnitPrice"`
	HourCapPrice       float64 `json:"hourCapPrice"`
	DayCapPrice        float64 `json:"dayCapPrice"`
}

func (t *tariffDTO) toDomain() domain.Tariff {
	if t == nil {
		return domain.Tariff{}
	}
	return domain.Tariff{
		UnlockFee:          t.UnlockFee,
		MinutePrice:        t.MinutePrice,
		KilometerPrice:     t.KilometerPrice,
		IncludedKilometers: t.IncludedKilometers,
		BookUnitPrice:      t.BookUnitPrice,
		PauseUnitPrice:     t.PauseUnitPrice,
		HourCapPrice:       t.HourCapPrice,
		DayCapPrice:        t.DayCapPrice,
	}
}

type pricingDTO struct {
	PricingPerMinute    *tariffDTO `json:"pricingPerMinute"`
	PricingPerKilometer *tariffDTO `json:"pricingPerKilometer"`
}
