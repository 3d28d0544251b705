package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/pkg/metrics"
)

const defaultTimeout = 5 * time.Second

var errNotFound = errors.New("provider: resource not found")

// Options configures a Client.
type Options struct {
	BaseURL   string
	CityID    string
	GeozoneID string
	Timeout   time.Duration
	// Dial overrides the TCP dialer, mostly for tests.
	Dial fasthttp.DialFunc
}

// Client reads the fleet, geozones and tariffs from the car-sharing operator.
// It implements ports.FleetProvider and ports.TariffProvider.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	cityID    string
	geozoneID string
	timeout   time.Duration
}

// New creates a provider client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "tripcost",
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: 30 * time.Second,
			Dial:                opts.Dial,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		cityID:    opts.CityID,
		geozoneID: opts.GeozoneID,
		timeout:   opts.Timeout,
	}
}

// Vehicles returns the city's current fleet snapshot.
func (c *Client) Vehicles(ctx context.Context) ([]domain.Vehicle, error) {
	var dtos []vehicleDTO
	if err := c.get(ctx, "vehicles", "/cities/"+url.PathEscape(c.cityID)+"/vehicles", &dtos); err != nil {
		return nil, wrapProvider("vehicles", err)
	}

	vehicles := make([]domain.Vehicle, 0, len(dtos))
	for _, d := range dtos {
		vehicles = append(vehicles, d.toDomain())
	}
	return vehicles, nil
}

// ParkingZones returns every geozone of the configured area, parking or not.
func (c *Client) ParkingZones(ctx context.Context) ([]domain.ParkingZone, error) {
	var dtos []geozoneDTO
	if err := c.get(ctx, "geozones", "/geozones/"+url.PathEscape(c.geozoneID), &dtos); err != nil {
		return nil, wrapProvider("geozones", err)
	}

	zones := make([]domain.ParkingZone, 0, len(dtos))
	for _, d := range dtos {
		zones = append(zones, d.toDomain())
	}
	return zones, nil
}

// Tariff returns the pay-per-use pricing of a car tier.
func (c *Client) Tariff(ctx context.Context, tier string) (*domain.TariffTable, error) {
	q := url.Values{}
	q.Set("modelType", domain.ModelTypeCar)
	q.Set("tier", tier)

	var dto pricingDTO
	err := c.get(ctx, "tariff", "/pricing/pay-per-use?"+q.Encode(), &dto)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("tier %q: %w", tier, domain.ErrUnknownTariffTier)
	}
	if err != nil {
		return nil, wrapProvider("tariff", err)
	}
	if dto.PricingPerMinute == nil || dto.PricingPerKilometer == nil {
		return nil, fmt.Errorf("tier %q has no pricing: %w", tier, domain.ErrUnknownTariffTier)
	}

	return &domain.TariffTable{
		Tier:                tier,
		PricingPerMinute:    dto.PricingPerMinute.toDomain(),
		PricingPerKilometer: dto.PricingPerKilometer.toDomain(),
		FetchedAt:           time.Now().UTC(),
	}, nil
}

func (c *Client) get(ctx context.Context, lookup, path string, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues(lookup).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ProviderErrors.WithLabelValues(lookup).Inc()
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusNotFound:
		return errNotFound
	case status < 200 || status > 299:
		return fmt.Errorf("GET %s: unexpected status %d", path, status)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func wrapProvider(lookup string, err error) error {
	return fmt.Errorf("%s lookup: %w: %w", lookup, domain.ErrDataProvider, err)
}
