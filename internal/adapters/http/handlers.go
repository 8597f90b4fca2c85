package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/query"
	"github.com/samirrijal/aterpe/internal/pkg/metrics"
)

// queryFloat parses a required float query parameter. Presence is checked
// explicitly: 0 is a legal coordinate, not a sentinel.
func queryFloat(c *fiber.Ctx, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryFloatPtr(c *fiber.Ctx, name string) *float64 {
	if v, ok := queryFloat(c, name); ok {
		return &v
	}
	return nil
}

func queryIntPtr(c *fiber.Ctx, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryStrPtr(c *fiber.Ctx, name string) *string {
	if raw := c.Query(name); raw != "" {
		return &raw
	}
	return nil
}

func queryBoolPtr(c *fiber.Ctx, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// parseFilters reads the shared filter query parameters used by every search
// endpoint. Absent parameters stay nil and constrain nothing.
func parseFilters(c *fiber.Ctx) (domain.SearchFilters, error) {
	var f domain.SearchFilters

	f.City = queryStrPtr(c, "city")
	f.District = queryStrPtr(c, "district")
	f.Zip = queryStrPtr(c, "zip")
	f.AddressKeyword = queryStrPtr(c, "address")
	f.Keyword = queryStrPtr(c, "q")

	f.PropertyType = queryStrPtr(c, "property_type")
	f.RentalType = queryStrPtr(c, "rental_type")

	f.MinPrice = queryFloatPtr(c, "min_price")
	f.MaxPrice = queryFloatPtr(c, "max_price")
	f.MinDeposit = queryFloatPtr(c, "min_deposit")
	f.MaxDeposit = queryFloatPtr(c, "max_deposit")
	f.MinAreaSqm = queryFloatPtr(c, "min_area")
	f.MaxAreaSqm = queryFloatPtr(c, "max_area")

	f.MinRooms = queryIntPtr(c, "min_rooms")
	f.MaxRooms = queryIntPtr(c, "max_rooms")
	f.MinBathrooms = queryIntPtr(c, "min_bathrooms")
	f.MaxBathrooms = queryIntPtr(c, "max_bathrooms")
	f.MinFloor = queryIntPtr(c, "min_floor")
	f.MaxFloor = queryIntPtr(c, "max_floor")
	f.ExcludeBasement = c.QueryBool("exclude_basement", false)
	f.ExcludeRooftop = c.QueryBool("exclude_rooftop", false)

	f.Parking = queryBoolPtr(c, "parking")
	f.PetsAllowed = queryBoolPtr(c, "pets")
	f.Furnished = queryBoolPtr(c, "furnished")
	f.ShortTerm = queryBoolPtr(c, "short_term")

	if raw := c.Query("options"); raw != "" {
		for _, opt := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(opt); trimmed != "" {
				f.RequiredOptions = append(f.RequiredOptions, trimmed)
			}
		}
	}

	if raw := c.Query("available_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			if t, err = time.Parse(time.RFC3339, raw); err != nil {
				return f, fiber.NewError(400, "available_from must be YYYY-MM-DD or RFC 3339")
			}
		}
		f.AvailableFrom = &t
	}

	f.SortBy = domain.SortKey(c.Query("sort"))
	f.SortDesc = c.Query("order") == "desc"

	return f, nil
}

func parsePage(c *fiber.Ctx) query.Page {
	return query.Page{
		Offset: c.QueryInt("offset", 0),
		Limit:  c.QueryInt("limit", 20),
	}
}

func pageOf(limit int) query.Page {
	return query.Page{Limit: limit}
}

// searchErr maps a service error to the API envelope and counts rejections
// that never reached the store.
func searchErr(c *fiber.Ctx, kind string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		metrics.SearchRejections.WithLabelValues(kind, "invalid_argument").Inc()
	case errors.Is(err, domain.ErrResultSetTooLarge):
		metrics.SearchRejections.WithLabelValues(kind, "result_set_too_large").Inc()
	}
	return fromDomainErr(c, err)
}

func parseBounds(c *fiber.Ctx) (domain.Bounds, bool) {
	north, okN := queryFloat(c, "north")
	south, okS := queryFloat(c, "south")
	east, okE := queryFloat(c, "east")
	west, okW := queryFloat(c, "west")
	if !okN || !okS || !okE || !okW {
		return domain.Bounds{}, false
	}
	return domain.Bounds{North: north, South: south, East: east, West: west}, true
}

// RadiusSearchHandler returns active listings within a radius of a point,
// closest first, with distance and bearing annotations.
func RadiusSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, okLat := queryFloat(c, "lat")
		lng, okLng := queryFloat(c, "lng")
		if !okLat || !okLng {
			return errBadRequest(c, "lat and lng are required")
		}
		radiusKm, ok := queryFloat(c, "radius_km")
		if !ok {
			radiusKm = 5
		}

		filters, err := parseFilters(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		metrics.SearchesTotal.WithLabelValues("radius").Inc()
		res, err := deps.Search.Radius(c.Context(), domain.GeoPoint{Lat: lat, Lng: lng}, radiusKm, filters, parsePage(c))
		if err != nil {
			return searchErr(c, "radius", err)
		}
		metrics.SearchResultSize.WithLabelValues("radius").Observe(float64(len(res.Items)))

		pg := Pagination{Offset: res.Offset, Limit: res.Limit, Total: res.Total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: res.Items, Pagination: pg})
	}
}

// BoundsSearchHandler returns active listings inside a map viewport.
func BoundsSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, ok := parseBounds(c)
		if !ok {
			return errBadRequest(c, "north, south, east, and west are required")
		}

		filters, err := parseFilters(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		metrics.SearchesTotal.WithLabelValues("bounds").Inc()
		res, err := deps.Search.Bounds(c.Context(), b, filters, parsePage(c))
		if err != nil {
			return searchErr(c, "bounds", err)
		}
		metrics.SearchResultSize.WithLabelValues("bounds").Observe(float64(len(res.Items)))

		pg := Pagination{Offset: res.Offset, Limit: res.Limit, Total: res.Total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: res.Items, Pagination: pg})
	}
}

// NearestHandler returns the N closest active listings to a point.
func NearestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, okLat := queryFloat(c, "lat")
		lng, okLng := queryFloat(c, "lng")
		if !okLat || !okLng {
			return errBadRequest(c, "lat and lng are required")
		}
		limit := c.QueryInt("limit", 10)
		if limit > 50 {
			limit = 50
		}

		metrics.SearchesTotal.WithLabelValues("nearest").Inc()
		items, err := deps.Search.Nearest(c.Context(), domain.GeoPoint{Lat: lat, Lng: lng}, limit)
		if err != nil {
			return searchErr(c, "nearest", err)
		}
		metrics.SearchResultSize.WithLabelValues("nearest").Observe(float64(len(items)))

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(fiber.Map{"items": items, "count": len(items)})
	}
}

// SimilarHandler returns listings resembling a reference listing. An unknown
// reference yields an empty list, not a 404.
func SimilarHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "listing id is required")
		}
		limit := c.QueryInt("limit", 10)
		if limit > 50 {
			limit = 50
		}

		metrics.SearchesTotal.WithLabelValues("similar").Inc()
		items, err := deps.Similarity.Similar(c.Context(), id, limit)
		if err != nil {
			return searchErr(c, "similar", err)
		}

		return c.JSON(fiber.Map{"items": items, "count": len(items)})
	}
}

// ClustersHandler returns grid clusters of listings for map rendering.
func ClustersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, ok := parseBounds(c)
		if !ok {
			return errBadRequest(c, "north, south, east, and west are required")
		}
		zoom := c.QueryInt("zoom", 12)

		metrics.SearchesTotal.WithLabelValues("clusters").Inc()
		clusters, err := deps.Clusters.Clusters(c.Context(), b, zoom)
		if err != nil {
			return searchErr(c, "clusters", err)
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(fiber.Map{"clusters": clusters, "count": len(clusters)})
	}
}

// ListListingsHandler is the attribute criteria search. Unlike the geo paths
// it honors an explicit status override, so back-office tools can inspect
// paused or rented stock.
func ListListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters, err := parseFilters(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if raw := c.Query("status"); raw != "" {
			status := domain.ListingStatus(raw)
			switch status {
			case domain.StatusActive, domain.StatusPaused, domain.StatusRented, domain.StatusDeleted:
				filters.Status = &status
			default:
				return errBadRequest(c, "unknown status: "+raw)
			}
		}

		metrics.SearchesTotal.WithLabelValues("criteria").Inc()
		res, err := deps.Search.ByCriteria(c.Context(), filters, parsePage(c))
		if err != nil {
			return searchErr(c, "criteria", err)
		}
		metrics.SearchResultSize.WithLabelValues("criteria").Observe(float64(len(res.Items)))

		pg := Pagination{Offset: res.Offset, Limit: res.Limit, Total: res.Total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: res.Items, Pagination: pg})
	}
}

// GetListingHandler returns a single listing by id.
func GetListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "listing id is required")
		}
		l, err := deps.Listings.GetByID(c.Context(), id)
		if err != nil {
			return fromDomainErr(c, err)
		}
		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(l)
	}
}

// BatchListingsHandler returns multiple listings by id.
func BatchListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("ids", "")
		if raw == "" {
			return errBadRequest(c, "ids query parameter is required (comma-separated)")
		}

		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				ids = append(ids, trimmed)
			}
		}
		if len(ids) == 0 {
			return errBadRequest(c, "at least one listing id is required")
		}
		if len(ids) > 100 {
			return errBadRequest(c, "maximum 100 listing ids allowed")
		}

		listings, err := deps.Listings.GetByIDs(c.Context(), ids)
		if err != nil {
			return fromDomainErr(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(listings)
	}
}

// IndexStats holds row counts for the search index.
type IndexStats struct {
	Listings   int    `json:"listings"`
	Active     int    `json:"active"`
	Geocoded   int    `json:"geocoded"`
	Cities     int    `json:"cities"`
	LastIngest string `json:"last_ingest,omitempty"`
}

// IndexStatsHandler reports what the search index currently holds.
func IndexStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats IndexStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM listings),
				(SELECT count(*) FROM listings WHERE status = 'active'),
				(SELECT count(*) FROM listings WHERE latitude IS NOT NULL AND longitude IS NOT NULL),
				(SELECT count(DISTINCT city) FROM listings),
				COALESCE((SELECT max(updated_at)::text FROM listings), '')
		`)
		if err := row.Scan(&stats.Listings, &stats.Active, &stats.Geocoded,
			&stats.Cities, &stats.LastIngest); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}
