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

const (
	minZoom = 1
	maxZoom = 20
)

// ClusterService aggregates listings inside a viewport into zoom-dependent
// grid clusters for map rendering. Clusters are rebuilt on every call and
// carry no cross-call identity.
type ClusterService struct {
	listings ports.ListingRepository
	cache    ports.CacheService
	opts     Options
}

// NewClusterService creates a new ClusterService.
func NewClusterService(listings ports.ListingRepository, cache ports.CacheService, opts Options) *ClusterService {
	if opts.ClusterBaseCellDeg <= 0 {
		opts = DefaultOptions()
	}
	return &ClusterService{listings: listings, cache: cache, opts: opts}
}

// Clusters returns the grid aggregation of all active, coordinate-bearing
// listings inside the viewport. Every scanned listing lands in exactly one
// cell, so cluster counts always sum to the scanned listing count. A cell
// with a single listing still yields a cluster of count 1; rendering
// singletons as pins is the consumer's call.
func (s *ClusterService) Clusters(ctx context.Context, b domain.Bounds, zoom int) ([]domain.Cluster, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: malformed bounds n=%v s=%v e=%v w=%v", domain.ErrInvalidArgument, b.North, b.South, b.East, b.West)
	}
	if zoom < minZoom || zoom > maxZoom {
		return nil, fmt.Errorf("%w: zoom must be in [%d,%d], got %d", domain.ErrInvalidArgument, minZoom, maxZoom, zoom)
	}

	cacheKey := fmt.Sprintf("search:clusters:%.4f:%.4f:%.4f:%.4f:%d", b.North, b.South, b.East, b.West, zoom)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached []domain.Cluster
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	pred := query.FromFilters(domain.SearchFilters{}).WithCoordinates().WithinBox(b)
	items, total, err := s.listings.Scan(ctx, pred,
		query.Sort{Field: query.FieldCreated, Desc: true},
		query.Page{Limit: s.opts.MaxScan})
	if err != nil {
		return nil, err
	}
	if total > s.opts.MaxScan {
		return nil, fmt.Errorf("%w: %d listings exceed scan cap %d", domain.ErrResultSetTooLarge, total, s.opts.MaxScan)
	}

	clusters := s.aggregate(items, zoom)

	if s.cache != nil {
		if data, err := json.Marshal(clusters); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return clusters, nil
}

type cellAgg struct {
	latSum   float64
	lngSum   float64
	priceSum float64
	priced   int
	ids      []string
}

// aggregate performs the map-reduce over the scanned page: assign each
// listing to its grid cell, then fold cells into clusters.
func (s *ClusterService) aggregate(items []domain.Listing, zoom int) []domain.Cluster {
	cellSize := geospatial.CellSizeDeg(s.opts.ClusterBaseCellDeg, zoom)

	cells := make(map[geospatial.CellKey]*cellAgg)
	for _, l := range items {
		if !l.HasCoordinates() {
			continue
		}
		key := geospatial.CellOf(*l.Latitude, *l.Longitude, cellSize)
		agg := cells[key]
		if agg == nil {
			agg = &cellAgg{}
			cells[key] = agg
		}
		agg.latSum += *l.Latitude
		agg.lngSum += *l.Longitude
		agg.ids = append(agg.ids, l.ID)
		if l.Price != nil {
			// Unpriced listings stay out of the average; they are not free.
			agg.priceSum += *l.Price
			agg.priced++
		}
	}

	clusters := make([]domain.Cluster, 0, len(cells))
	for _, agg := range cells {
		n := len(agg.ids)
		c := domain.Cluster{
			CenterLat: geospatial.Round6(agg.latSum / float64(n)),
			CenterLng: geospatial.Round6(agg.lngSum / float64(n)),
			Count:     n,
			MemberIDs: agg.ids,
		}
		if agg.priced > 0 {
			avg := agg.priceSum / float64(agg.priced)
			c.AveragePrice = &avg
		}
		clusters = append(clusters, c)
	}

	// Map iteration order is random; emit biggest clusters first with a
	// coordinate tiebreak so responses are stable.
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		if clusters[i].CenterLat != clusters[j].CenterLat {
			return clusters[i].CenterLat < clusters[j].CenterLat
		}
		return clusters[i].CenterLng < clusters[j].CenterLng
	})

	return clusters
}
