package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const httpDate = "Mon, 02 Jan 2006 15:04:05 GMT"

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	SunsetDate  time.Time // Date when endpoint will be removed
	Alternative string    // Recommended alternative endpoint (optional)
}

// LegacyCostEstimation is the unversioned estimation endpoint kept for existing clients.
var LegacyCostEstimation = DeprecatedRoute{
	SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
	Alternative: "/v1/cost-estimations",
}

// Deprecated is a route-level middleware adding Deprecation, Sunset, Link and
// Warning headers (RFC 8594, RFC 8288).
func Deprecated(d DeprecatedRoute) fiber.Handler {
	sunset := d.SunsetDate.UTC().Format(httpDate)

	return func(c *fiber.Ctx) error {
		c.Set("Deprecation", "true")
		c.Set("Sunset", sunset)
		if d.Alternative != "" {
			c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
		}

		days := time.Until(d.SunsetDate).Hours() / 24
		if days < 0 {
			days = 0
		}
		c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))

		return c.Next()
	}
}
