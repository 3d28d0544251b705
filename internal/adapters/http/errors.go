package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tripcost/internal/core/domain"
	"github.com/samirrijal/tripcost/internal/pkg/metrics"
)

// estimationFailedMessage is the only detail clients get for non-input failures.
const estimationFailedMessage = "Failed to estimate journey's cost"

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`  // bad_request, not_found, internal_error, ...
	Error     string `json:"error"` // human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Error:     message,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, "bad_gateway", msg)
}

// failureKind labels an estimation error for metrics and logs.
func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNoEligibleVehicle):
		return "no_vehicle"
	case errors.Is(err, domain.ErrNoEligibleParkingZone):
		return "no_parking_zone"
	case errors.Is(err, domain.ErrUnknownTariffTier):
		return "unknown_tier"
	case errors.Is(err, domain.ErrDataProvider):
		return "data_provider"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "internal"
	}
}

// classifyEstimationError maps a failed estimate to status, code and the
// message shown to the client. Only invalid input is described; everything
// else is a 500 with a generic message and the cause goes to the log.
func classifyEstimationError(c *fiber.Ctx, err error) (int, string, string) {
	kind := failureKind(err)
	metrics.EstimateFailures.WithLabelValues(kind).Inc()

	if kind == "invalid_input" {
		return fiber.StatusBadRequest, "bad_request", err.Error()
	}

	LoggerFromCtx(c.UserContext()).Error("estimation failed", "kind", kind, "error", err)
	return fiber.StatusInternalServerError, "internal_error", estimationFailedMessage
}
