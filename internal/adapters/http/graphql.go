package http

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/tripcost/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services. Object fields
// follow the JSON names of the domain types so the default resolver finds them.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	tariffType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tariff",
		Fields: graphql.Fields{
			"unlock_fee":          &graphql.Field{Type: graphql.Float},
			"minute_price":        &graphql.Field{Type: graphql.Float},
			"kilometer_price":     &graphql.Field{Type: graphql.Float},
			"included_kilometers": &graphql.Field{Type: graphql.Float},
			"book_unit_price":     &graphql.Field{Type: graphql.Float},
			"pause_unit_price":    &graphql.Field{Type: graphql.Float},
			"hour_cap_price":      &graphql.Field{Type: graphql.Float},
			"day_cap_price":       &graphql.Field{Type: graphql.Float},
		},
	})

	tariffTableType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TariffTable",
		Fields: graphql.Fields{
			"tier":                  &graphql.Field{Type: graphql.String},
			"pricing_per_minute":    &graphql.Field{Type: tariffType},
			"pricing_per_kilometer": &graphql.Field{Type: tariffType},
			"fetched_at": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if t, ok := p.Source.(*domain.TariffTable); ok {
						return t.FetchedAt.Format(time.RFC3339), nil
					}
					return nil, nil
				},
			},
		},
	})

	unitsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ReservationUnits",
		Fields: graphql.Fields{
			"minutes":     &graphql.Field{Type: graphql.Float},
			"kilometers":  &graphql.Field{Type: graphql.Float},
			"book_units":  &graphql.Field{Type: graphql.Float},
			"pause_units": &graphql.Field{Type: graphql.Float},
			"hour_cap":    &graphql.Field{Type: graphql.Float},
			"day_cap":     &graphql.Field{Type: graphql.Float},
		},
	})

	reservationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Reservation",
		Fields: graphql.Fields{
			"tier":                  &graphql.Field{Type: graphql.String},
			"units":                 &graphql.Field{Type: unitsType},
			"pricing_per_minute":    &graphql.Field{Type: graphql.Float},
			"pricing_per_kilometer": &graphql.Field{Type: graphql.Float},
		},
	})

	pricesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Prices",
		Fields: graphql.Fields{
			"pricing_per_minute":    &graphql.Field{Type: graphql.Float},
			"pricing_per_kilometer": &graphql.Field{Type: graphql.Float},
		},
	})

	estimateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Estimate",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.String},
			"best_choice": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if e, ok := p.Source.(*domain.Estimate); ok {
						return string(e.BestChoice), nil
					}
					return nil, nil
				},
			},
			"prices":       &graphql.Field{Type: pricesType},
			"reservations": &graphql.Field{Type: graphql.NewList(reservationType)},
			"created_at": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if e, ok := p.Source.(*domain.Estimate); ok {
						return e.CreatedAt.Format(time.RFC3339Nano), nil
					}
					return nil, nil
				},
			},
		},
	})

	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"latitude":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"longitude": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	legInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LegInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"timestamp": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"start":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(pointInput)},
			"end":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(pointInput)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"estimate": &graphql.Field{
				Type:        estimateType,
				Description: "Estimate the cost of a multi-leg trip",
				Args: graphql.FieldConfigArgument{
					"legs": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(legInput)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					// round-trip through JSON so GraphQL input gets the REST validation
					body, err := json.Marshal(p.Args["legs"])
					if err != nil {
						return nil, err
					}
					legs, err := parseLegs(body)
					if err != nil {
						return nil, err
					}
					est, err := deps.Estimation.Estimate(p.Context, legs)
					if err != nil {
						if errors.Is(err, domain.ErrInvalidInput) {
							return nil, err
						}
						LoggerFromCtx(p.Context).Error("graphql estimation failed", "kind", failureKind(err), "error", err)
						return nil, errors.New(estimationFailedMessage)
					}
					return est, nil
				},
			},
			"tariff": &graphql.Field{
				Type:        tariffTableType,
				Description: "Tariff table of a vehicle tier",
				Args: graphql.FieldConfigArgument{
					"tier": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tariffs.Tariff(p.Context, p.Args["tier"].(string))
				},
			},
			"recordedEstimate": &graphql.Field{
				Type:        estimateType,
				Description: "A previously computed estimate",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.History == nil {
						return nil, errors.New("estimate history not available")
					}
					est, err := deps.History.GetByID(p.Context, p.Args["id"].(string))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					return est, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
