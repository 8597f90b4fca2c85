package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/aterpe/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	listingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Listing",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"title":          &graphql.Field{Type: graphql.String},
			"description":    &graphql.Field{Type: graphql.String},
			"address":        &graphql.Field{Type: graphql.String},
			"city":           &graphql.Field{Type: graphql.String},
			"district":       &graphql.Field{Type: graphql.String},
			"zip":            &graphql.Field{Type: graphql.String},
			"property_type":  &graphql.Field{Type: graphql.String},
			"rental_type":    &graphql.Field{Type: graphql.String},
			"status":         &graphql.Field{Type: graphql.String},
			"price":          &graphql.Field{Type: graphql.Float},
			"deposit":        &graphql.Field{Type: graphql.Float},
			"rooms":          &graphql.Field{Type: graphql.Int},
			"bathrooms":      &graphql.Field{Type: graphql.Int},
			"area_sqm":       &graphql.Field{Type: graphql.Float},
			"floor":          &graphql.Field{Type: graphql.Int},
			"total_floors":   &graphql.Field{Type: graphql.Int},
			"parking":        &graphql.Field{Type: graphql.Boolean},
			"pets_allowed":   &graphql.Field{Type: graphql.Boolean},
			"furnished":      &graphql.Field{Type: graphql.Boolean},
			"short_term":     &graphql.Field{Type: graphql.Boolean},
			"options":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"latitude":       &graphql.Field{Type: graphql.Float},
			"longitude":      &graphql.Field{Type: graphql.Float},
			"available_from": &graphql.Field{Type: graphql.DateTime},
		},
	})

	geoListingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoListing",
		Fields: graphql.Fields{
			"listing":     &graphql.Field{Type: listingType},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"bearing_deg": &graphql.Field{Type: graphql.Float},
		},
	})

	clusterType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cluster",
		Fields: graphql.Fields{
			"center_lat":    &graphql.Field{Type: graphql.Float},
			"center_lng":    &graphql.Field{Type: graphql.Float},
			"count":         &graphql.Field{Type: graphql.Int},
			"member_ids":    &graphql.Field{Type: graphql.NewList(graphql.String)},
			"average_price": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"listing": &graphql.Field{
				Type:        listingType,
				Description: "Get a listing by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Listings.GetByID(p.Context, id)
				},
			},
			"listingsNearby": &graphql.Field{
				Type:        graphql.NewList(geoListingType),
				Description: "Closest active listings to a point",
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Search.Nearest(p.Context, domain.GeoPoint{Lat: lat, Lng: lng}, limit)
				},
			},
			"searchRadius": &graphql.Field{
				Type:        graphql.NewList(geoListingType),
				Description: "Active listings within a radius of a point, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5.0},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					radius := p.Args["radius_km"].(float64)
					limit := p.Args["limit"].(int)
					res, err := deps.Search.Radius(p.Context,
						domain.GeoPoint{Lat: lat, Lng: lng}, radius,
						domain.SearchFilters{}, pageOf(limit))
					if err != nil {
						return nil, err
					}
					return res.Items, nil
				},
			},
			"similarListings": &graphql.Field{
				Type:        graphql.NewList(listingType),
				Description: "Listings resembling a reference listing",
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					limit := p.Args["limit"].(int)
					return deps.Similarity.Similar(p.Context, id, limit)
				},
			},
			"clusters": &graphql.Field{
				Type:        graphql.NewList(clusterType),
				Description: "Grid clusters of active listings inside a viewport",
				Args: graphql.FieldConfigArgument{
					"north": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"south": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"east":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"west":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"zoom":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 12},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b := domain.Bounds{
						North: p.Args["north"].(float64),
						South: p.Args["south"].(float64),
						East:  p.Args["east"].(float64),
						West:  p.Args["west"].(float64),
					}
					zoom := p.Args["zoom"].(int)
					return deps.Clusters.Clusters(p.Context, b, zoom)
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
