package provider_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/samirrijal/tripcost/internal/adapters/provider"
	"github.com/samirrijal/tripcost/internal/core/domain"
)

const (
	vehiclesJSON = `[
		{"id": "v-1", "locationLatitude": 41.39, "locationLongitude": 2.16, "model": {"type": "car", "tier": "M"}},
		{"id": 42, "locationLatitude": 41.40, "locationLongitude": 2.17, "model": {"type": "car", "tier": 2}},
		{"id": "s-1", "locationLatitude": 41.41, "locationLongitude": 2.18, "model": {"type": "scooter", "tier": "S"}}
	]`

	geozonesJSON = `[
		{"id": "z-1", "geofencingType": "parking", "geom": {"geometry": {"coordinates": [
			[[[2.10, 41.30], [2.20, 41.30], [2.20, 41.40], [2.10, 41.40]]],
			[[[2.30, 41.50], [2.40, 41.50], [2.40, 41.60]]]
		]}}},
		{"geofencingType": "noParking", "geom": {"geometry": {"coordinates": []}}}
	]`

	pricingJSON = `{
		"pricingPerMinute": {"unlockFee": 1000, "minutePrice": 290, "bookUnitPrice": 90},
		"pricingPerKilometer": {"unlockFee": 1000, "kilometerPrice": 340, "includedKilometers": 2}
	}`
)

func startProvider(t *testing.T, handler fasthttp.RequestHandler) *provider.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	return provider.New(provider.Options{
		BaseURL:   "http://provider.test/api/v3",
		CityID:    "city-1",
		GeozoneID: "zone-1",
		Timeout:   2 * time.Second,
		Dial:      func(string) (net.Conn, error) { return ln.Dial() },
	})
}

func fakeOperator(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/json")
	switch string(ctx.Path()) {
	case "/api/v3/cities/city-1/vehicles":
		ctx.SetBodyString(vehiclesJSON)
	case "/api/v3/geozones/zone-1":
		ctx.SetBodyString(geozonesJSON)
	case "/api/v3/pricing/pay-per-use":
		switch string(ctx.QueryArgs().Peek("tier")) {
		case "M":
			ctx.SetBodyString(pricingJSON)
		case "EMPTY":
			ctx.SetBodyString(`{}`)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	default:
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
}

func TestVehicles(t *testing.T) {
	client := startProvider(t, fakeOperator)

	vehicles, err := client.Vehicles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 3 {
		t.Fatalf("expected 3 vehicles, got %d", len(vehicles))
	}

	first := vehicles[0]
	if first.ID != "v-1" || first.Model.Tier != "M" || !first.IsCar() {
		t.Errorf("unexpected first vehicle: %+v", first)
	}
	if first.Location.Lat != 41.39 || first.Location.Lon != 2.16 {
		t.Errorf("location not mapped: %+v", first.Location)
	}
	if vehicles[1].ID != "42" || vehicles[1].Model.Tier != "2" {
		t.Errorf("numeric id and tier should become strings, got %+v", vehicles[1])
	}
	if vehicles[2].IsCar() {
		t.Error("scooter should not be a car")
	}
}

func TestParkingZones_SwapsCoordinates(t *testing.T) {
	client := startProvider(t, fakeOperator)

	zones, err := client.ParkingZones(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}

	parking := zones[0]
	if !parking.IsParking() || zones[1].IsParking() {
		t.Errorf("geofencing types not mapped: %+v", zones)
	}
	if len(parking.Polygons) != 2 {
		t.Fatalf("expected 2 polygons, got %d", len(parking.Polygons))
	}
	got := parking.Polygons[0][1]
	want := domain.GeoPoint{Lat: 41.30, Lon: 2.20}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if len(parking.Polygons[1]) != 3 {
		t.Errorf("expected 3 vertices in second polygon, got %d", len(parking.Polygons[1]))
	}
}

func TestTariff(t *testing.T) {
	client := startProvider(t, fakeOperator)

	table, err := client.Tariff(context.Background(), "M")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Tier != "M" {
		t.Errorf("expected tier M, got %s", table.Tier)
	}
	if table.PricingPerMinute.MinutePrice != 290 || table.PricingPerMinute.BookUnitPrice != 90 {
		t.Errorf("per-minute tariff not mapped: %+v", table.PricingPerMinute)
	}
	if table.PricingPerKilometer.KilometerPrice != 340 || table.PricingPerKilometer.IncludedKilometers != 2 {
		t.Errorf("per-kilometer tariff not mapped: %+v", table.PricingPerKilometer)
	}
	if table.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestTariff_UnknownTier(t *testing.T) {
	client := startProvider(t, fakeOperator)

	for _, tier := range []string{"XXL", "EMPTY"} {
		_, err := client.Tariff(context.Background(), tier)
		if !errors.Is(err, domain.ErrUnknownTariffTier) {
			t.Errorf("tier %s: expected ErrUnknownTariffTier, got %v", tier, err)
		}
	}
}

func TestProviderFailure(t *testing.T) {
	client := startProvider(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusBadGateway)
	})

	if _, err := client.Vehicles(context.Background()); !errors.Is(err, domain.ErrDataProvider) {
		t.Errorf("expected ErrDataProvider, got %v", err)
	}
	if _, err := client.Tariff(context.Background(), "M"); !errors.Is(err, domain.ErrDataProvider) {
		t.Errorf("expected ErrDataProvider, got %v", err)
	}
}

func TestMalformedBody(t *testing.T) {
	client := startProvider(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"not": "an array"}`)
	})

	if _, err := client.ParkingZones(context.Background()); !errors.Is(err, domain.ErrDataProvider) {
		t.Errorf("expected ErrDataProvider, got %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	client := startProvider(t, fakeOperator)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Vehicles(ctx)
	if !errors.Is(err, context.Canceled) || !errors.Is(err, domain.ErrDataProvider) {
		t.Errorf("expected cancelled provider error, got %v", err)
	}
}
