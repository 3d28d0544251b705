package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// UTC instants only, optional fractional seconds.
var iso8601UTC = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso8601utc", func(fl validator.FieldLevel) bool {
		return iso8601UTC.MatchString(fl.Field().String())
	})
	return v
}

// Pointers tell a missing field apart from a zero coordinate.
type pointRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

type legRequest struct {
	Timestamp *string       `json:"timestamp" validate:"required,iso8601utc"`
	Start     *pointRequest `json:"start" validate:"required"`
	End       *pointRequest `json:"end" validate:"required"`
}

func (p *pointRequest) toDomain() domain.GeoPoint {
	return domain.GeoPoint{Lat: *p.Latitude, Lon: *p.Longitude}
}

// ValidationError is a malformed request body. Its message is returned to the client as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

var (
	errNotAnArray = &ValidationError{Message: "Request body must be an array."}
	errNoLegs     = &ValidationError{Message: "Request body must contain at least one leg."}
)

func invalidLeg(i int) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf("Invalid leg format at index %d.", i)}
}

// parseLegs decodes and validates a JSON array of legs.
func parseLegs(body []byte) ([]domain.Leg, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return nil, errNotAnArray
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errNotAnArray
	}
	if len(raw) == 0 {
		return nil, errNoLegs
	}

	legs := make([]domain.Leg, 0, len(raw))
	for i, r := range raw {
		var req legRequest
		if err := json.Unmarshal(r, &req); err != nil {
			return nil, invalidLeg(i)
		}
		if err := validate.Struct(req); err != nil {
			return nil, invalidLeg(i)
		}
		ts, err := time.Parse(time.RFC3339Nano, *req.Timestamp)
		if err != nil {
			return nil, invalidLeg(i)
		}

		legs = append(legs, domain.Leg{
			Timestamp: ts.UTC(),
			Start:     req.Start.toDomain(),
			End:       req.End.toDomain(),
		})
	}
	return legs, nil
}
