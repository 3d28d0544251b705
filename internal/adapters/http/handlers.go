package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/pkg/metrics"
)

// CostEstimationResponse is the body of the original POST /costEstimation.
type CostEstimationResponse struct {
	BestChoice          domain.Scheme `json:"bestChoice"`
	PricingPerMinute    float64       `json:"pricingPerMinute"`
	PricingPerKilometer float64       `json:"pricingPerKilometer"`
}

// estimate parses the body and runs the estimation. On failure it returns
// the status and the client message, already classified.
func estimate(c *fiber.Ctx, deps *Dependencies) (*domain.Estimate, int, string, string) {
	legs, err := parseLegs(c.Body())
	if err != nil {
		metrics.EstimateFailures.WithLabelValues("invalid_input").Inc()
		return nil, fiber.StatusBadRequest, "bad_request", err.Error()
	}
	metrics.EstimateLegs.Observe(float64(len(legs)))

	est, err := deps.Estimation.Estimate(c.UserContext(), legs)
	if err != nil {
		status, code, msg := classifyEstimationError(c, err)
		return nil, status, code, msg
	}

	metrics.EstimatesTotal.WithLabelValues(string(est.BestChoice)).Inc()
	return est, fiber.StatusOK, "", ""
}

// CostEstimationHandler serves the legacy POST /costEstimation. Errors are
// plain {"error": "..."} bodies.
func CostEstimationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		est, status, _, msg := estimate(c, deps)
		if est == nil {
			return c.Status(status).JSON(fiber.Map{"error": msg})
		}
		return c.JSON(CostEstimationResponse{
			BestChoice:          est.BestChoice,
			PricingPerMinute:    est.Prices.PricingPerMinute,
			PricingPerKilometer: est.Prices.PricingPerKilometer,
		})
	}
}

// CreateEstimateHandler serves POST /v1/cost-estimations and returns the full estimate.
func CreateEstimateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		est, status, code, msg := estimate(c, deps)
		if est == nil {
			return newError(c, status, code, msg)
		}
		c.Set("Content-Location", "/v1/estimates/"+est.ID)
		return c.JSON(est)
	}
}

// GetEstimateHandler returns one recorded estimate.
func GetEstimateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.History == nil {
			return errUnavailable(c, "estimate history not available")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return errBadRequest(c, "estimate id must be a UUID")
		}

		est, err := deps.History.GetByID(c.UserContext(), id)
		if errors.Is(err, domain.ErrNotFound) {
			return errNotFound(c, "estimate not found")
		}
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("get estimate", "id", id, "error", err)
			return errInternal(c, "failed to load estimate")
		}

		// recorded estimates never change
		c.Set("Cache-Control", "public, max-age=86400, immutable")
		return c.JSON(est)
	}
}

// ListEstimatesHandler returns recorded estimates newest first, paginated.
func ListEstimatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.History == nil {
			return errUnavailable(c, "estimate history not available")
		}

		offset, limit := pageParams(c, 50, 200)

		estimates, total, err := deps.History.List(c.UserContext(), offset, limit)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("list estimates", "error", err)
			return errInternal(c, "failed to list estimates")
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: estimates, Pagination: pg})
	}
}

// GetTariffHandler returns the tariff table of a vehicle tier.
func GetTariffHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tier := c.Params("tier")

		table, err := deps.Tariffs.Tariff(c.UserContext(), tier)
		switch {
		case errors.Is(err, domain.ErrUnknownTariffTier):
			return errNotFound(c, "unknown tariff tier")
		case errors.Is(err, domain.ErrDataProvider):
			LoggerFromCtx(c.UserContext()).Warn("tariff lookup", "tier", tier, "error", err)
			return errBadGateway(c, "tariff provider unavailable")
		case err != nil:
			LoggerFromCtx(c.UserContext()).Error("tariff lookup", "tier", tier, "error", err)
			return errInternal(c, "failed to load tariff")
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(table)
	}
}
