package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/usecases"
)

// shelterFields lists the scalar fields shared by Shelter results.
func shelterFields() graphql.Fields {
	return graphql.Fields{
		"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"longitude":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"latitude":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"inventory_type": &graphql.Field{Type: graphql.String},
		"access_type":    &graphql.Field{Type: graphql.String},
		"area":           &graphql.Field{Type: graphql.Int},
		"capacity":       &graphql.Field{Type: graphql.Int},
		"quality":        &graphql.Field{Type: graphql.Int},
		"category":       &graphql.Field{Type: graphql.String},
		"purpose":        &graphql.Field{Type: graphql.String},
		"voivodeship":    &graphql.Field{Type: graphql.String},
		"province":       &graphql.Field{Type: graphql.String},
		"address":        &graphql.Field{Type: graphql.String},
		"distance":       &graphql.Field{Type: graphql.Float, Description: "Meters from the query point"},
	}
}

// shelterResult flattens a shelter into the map graphql-go resolves
// fields from. Nil optionals stay null.
func shelterResult(v domain.ShelterView) map[string]any {
	m := map[string]any{
		"id":        v.ID,
		"longitude": v.Longitude,
		"latitude":  v.Latitude,
	}
	optString := func(key string, s *string) {
		if s != nil {
			m[key] = *s
		}
	}
	optInt := func(key string, i *int) {
		if i != nil {
			m[key] = *i
		}
	}
	optString("inventory_type", v.InventoryType)
	optString("access_type", v.AccessType)
	optInt("area", v.Area)
	optInt("capacity", v.Capacity)
	optInt("quality", v.Quality)
	optString("category", v.Category)
	optString("purpose", v.Purpose)
	optString("voivodeship", v.Voivodeship)
	optString("province", v.Province)
	optString("address", v.Address)
	if v.Distance != nil {
		m["distance"] = *v.Distance
	}
	return m
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	shelterType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Shelter",
		Fields: shelterFields(),
	})

	occupancyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Occupancy",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"capacity":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"occupancy":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"free":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"updated_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	predictionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlacePrediction",
		Fields: graphql.Fields{
			"place_id":    &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"types":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"shelters": &graphql.Field{
				Type:        graphql.NewList(shelterType),
				Description: "Shelters within range of a point, nearest first",
				Args: graphql.FieldConfigArgument{
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"offset":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultLimit},
					"range":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultRange},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rng := p.Args["range"].(int)
					if rng > usecases.MaxRangeMeters {
						return nil, fmt.Errorf("%w: range must be less than 1000km", domain.ErrInvalidArgument)
					}
					if rng < 0 {
						return nil, fmt.Errorf("%w: range must not be negative", domain.ErrInvalidArgument)
					}
					point := domain.GeoPoint{
						Longitude: p.Args["longitude"].(float64),
						Latitude:  p.Args["latitude"].(float64),
					}
					views, err := deps.Shelters.ListNear(p.Context, point, rng, p.Args["offset"].(int), p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, len(views))
					for i, v := range views {
						out[i] = shelterResult(v)
					}
					return out, nil
				},
			},
			"shelter": &graphql.Field{
				Type:        shelterType,
				Description: "Get a shelter by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, err := deps.Shelters.Detail(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return shelterResult(domain.ShelterView{Shelter: *s}), nil
				},
			},
			"occupancy": &graphql.Field{
				Type:        occupancyType,
				Description: "Locally tracked occupancy of a shelter",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Occupancy == nil {
						return nil, fmt.Errorf("occupancy tracking unavailable")
					}
					occ, err := deps.Occupancy.Get(p.Context, int64(p.Args["id"].(int)))
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"id":         fmt.Sprint(occ.ShelterID),
						"capacity":   occ.Capacity,
						"occupancy":  occ.Occupancy,
						"free":       occ.Free(),
						"updated_at": occ.UpdatedAt,
					}, nil
				},
			},
			"autocomplete": &graphql.Field{
				Type:        graphql.NewList(predictionType),
				Description: "Place suggestions for a search prefix",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := strings.TrimSpace(p.Args["query"].(string))
					preds, err := deps.Places.Autocomplete(p.Context, q)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, len(preds))
					for i, pr := range preds {
						out[i] = map[string]any{
							"place_id":    pr.PlaceID,
							"description": pr.Description,
							"types":       pr.Types,
						}
					}
					return out, nil
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
		if strings.TrimSpace(req.Query) == "" {
			return errBadRequest(c, "query is required")
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
