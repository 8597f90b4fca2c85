package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/ports"
	"github.com/samirrijal/aterpe/internal/core/query"
	"github.com/samirrijal/aterpe/internal/pkg/geospatial"
)

// SearchService answers the geo search paths: radius, viewport bounds,
// nearest-neighbor, and the internal criteria search. It is stateless and
// read-only; concurrent calls are safe.
type SearchService struct {
	listings ports.ListingRepository
	cache    ports.CacheService
	opts     Options
}

// NewSearchService creates a new SearchService.
func NewSearchService(listings ports.ListingRepository, cache ports.CacheService, opts Options) *SearchService {
	if opts.NearestRadiusKm <= 0 {
		opts = DefaultOptions()
	}
	return &SearchService{listings: listings, cache: cache, opts: opts}
}

// Radius returns active listings within radiusKm of center, sorted ascending
// by exact distance. The store scan uses a bounding-box pre-filter; exact
// Haversine refinement afterwards drops corner false positives, so the page
// may hold fewer items than requested while Total still reports the
// pre-refinement match count.
func (s *SearchService) Radius(ctx context.Context, center domain.GeoPoint, radiusKm float64, filters domain.SearchFilters, page query.Page) (*domain.GeoSearchResult, error) {
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %v", domain.ErrInvalidArgument, radiusKm)
	}
	page = page.Normalize(20, 100)

	latDelta, lngDelta := geospatial.BoundingBoxDelta(radiusKm, center.Lat)
	box := domain.Bounds{
		North: center.Lat + latDelta,
		South: center.Lat - latDelta,
		East:  center.Lng + lngDelta,
		West:  center.Lng - lngDelta,
	}

	filters.Status = nil // public path: always active
	pred := query.FromFilters(filters).WithCoordinates().WithinBox(box)

	items, total, err := s.listings.Scan(ctx, pred, query.SortFor(filters), page)
	if err != nil {
		return nil, err
	}

	annotated := make([]domain.GeoListing, 0, len(items))
	for _, l := range items {
		if !l.HasCoordinates() {
			continue
		}
		d := l.DistanceKmFrom(center)
		if d > radiusKm {
			// Bounding-box corner candidate outside the true radius.
			continue
		}
		annotated = append(annotated, domain.GeoListing{
			Listing:    l,
			DistanceKm: d,
			BearingDeg: l.BearingDegFrom(center),
		})
	}
	sortByDistance(annotated)

	return &domain.GeoSearchResult{
		Items:  annotated,
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}, nil
}

// Bounds returns active listings inside a rectangular viewport, annotated
// with distance and bearing from the viewport centroid. The centroid distance
// is informational only and never excludes a result.
func (s *SearchService) Bounds(ctx context.Context, b domain.Bounds, filters domain.SearchFilters, page query.Page) (*domain.GeoSearchResult, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: malformed bounds n=%v s=%v e=%v w=%v", domain.ErrInvalidArgument, b.North, b.South, b.East, b.West)
	}
	page = page.Normalize(20, 100)

	filters.Status = nil
	pred := query.FromFilters(filters).WithCoordinates().WithinBox(b)

	items, total, err := s.listings.Scan(ctx, pred, query.SortFor(filters), page)
	if err != nil {
		return nil, err
	}

	center := b.Center()
	annotated := make([]domain.GeoListing, 0, len(items))
	for _, l := range items {
		if !l.HasCoordinates() {
			continue
		}
		annotated = append(annotated, domain.GeoListing{
			Listing:    l,
			DistanceKm: l.DistanceKmFrom(center),
			BearingDeg: l.BearingDegFrom(center),
		})
	}
	if filters.SortBy == domain.SortDistance {
		sortByDistance(annotated)
	}

	return &domain.GeoSearchResult{
		Items:  annotated,
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}, nil
}

// Nearest returns the limit closest active listings to p. The candidate set
// is pre-filtered with a fixed-radius bounding box; if a region holds fewer
// candidates inside that radius, fewer results come back. A scan that would
// exceed the configured cap fails with ErrResultSetTooLarge.
func (s *SearchService) Nearest(ctx context.Context, p domain.GeoPoint, limit int) ([]domain.GeoListing, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidArgument, limit)
	}

	cacheKey := fmt.Sprintf("search:nearest:%.4f:%.4f:%d", p.Lat, p.Lng, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached []domain.GeoListing
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	latDelta, lngDelta := geospatial.BoundingBoxDelta(s.opts.NearestRadiusKm, p.Lat)
	box := domain.Bounds{
		North: p.Lat + latDelta,
		South: p.Lat - latDelta,
		East:  p.Lng + lngDelta,
		West:  p.Lng - lngDelta,
	}

	pred := query.FromFilters(domain.SearchFilters{}).WithCoordinates().WithinBox(box)

	items, total, err := s.listings.Scan(ctx, pred, query.Sort{Field: query.FieldCreated, Desc: true}, query.Page{Limit: s.opts.MaxScan})
	if err != nil {
		return nil, err
	}
	if total > s.opts.MaxScan {
		return nil, fmt.Errorf("%w: %d candidates exceed scan cap %d", domain.ErrResultSetTooLarge, total, s.opts.MaxScan)
	}

	annotated := make([]domain.GeoListing, 0, len(items))
	for _, l := range items {
		if !l.HasCoordinates() {
			continue
		}
		d := l.DistanceKmFrom(p)
		if d > s.opts.NearestRadiusKm {
			continue
		}
		annotated = append(annotated, domain.GeoListing{
			Listing:    l,
			DistanceKm: d,
			BearingDeg: l.BearingDegFrom(p),
		})
	}
	sortByDistance(annotated)
	if len(annotated) > limit {
		annotated = annotated[:limit]
	}

	if s.cache != nil {
		if data, err := json.Marshal(annotated); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return annotated, nil
}

// ByCriteria is the internal attribute search: no geo math, store-side sort,
// and an explicit status override is honored (defaulting to active).
func (s *SearchService) ByCriteria(ctx context.Context, filters domain.SearchFilters, page query.Page) (*domain.SearchResult, error) {
	page = page.Normalize(20, 100)

	pred := query.FromFilters(filters)
	items, total, err := s.listings.Scan(ctx, pred, query.SortFor(filters), page)
	if err != nil {
		return nil, err
	}

	return &domain.SearchResult{
		Items:  items,
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}, nil
}

// sortByDistance orders annotated listings ascending by distance, breaking
// ties by id for deterministic pages.
func sortByDistance(items []domain.GeoListing) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DistanceKm != items[j].DistanceKm {
			return items[i].DistanceKm < items[j].DistanceKm
		}
		return items[i].Listing.ID < items[j].Listing.ID
	})
}
