package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/query"
	"github.com/samirrijal/aterpe/internal/core/usecases"
)

func TestSearchService_Radius_ReturnsOnlyListingsInsideRadius(t *testing.T) {
	// Two listings in inner Sydney, one ~130 km away near Wollongong. The
	// distant one sneaks through only if the caller forgets the exact-radius
	// refinement; the store mock deliberately returns all three.
	inTown1 := activeListing("l1", -33.87, 151.21)
	inTown2 := activeListing("l2", -33.88, 151.22)
	farAway := activeListing("l3", -34.50, 150.00)
	inTown1.Price = fp(500)
	inTown2.Price = fp(520)
	farAway.Price = fp(300)

	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			return []domain.Listing{farAway, inTown2, inTown1}, 3, nil
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	res, err := svc.Radius(context.Background(), domain.GeoPoint{Lat: -33.87, Lng: 151.21}, 5, domain.SearchFilters{}, query.Page{Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Items) != 2 {
		t.Fatalf("expected 2 listings inside radius, got %d", len(res.Items))
	}
	if res.Items[0].Listing.ID != "l1" || res.Items[1].Listing.ID != "l2" {
		t.Errorf("expected [l1 l2] sorted by distance, got [%s %s]", res.Items[0].Listing.ID, res.Items[1].Listing.ID)
	}
	if res.Items[0].DistanceKm > 0.001 {
		t.Errorf("first listing should sit at the center, distance %v", res.Items[0].DistanceKm)
	}
	if d := res.Items[1].DistanceKm; math.Abs(d-1.45) > 0.2 {
		t.Errorf("second listing distance = %v, want ~1.45 km", d)
	}
	// Total reports the pre-refinement store count.
	if res.Total != 3 {
		t.Errorf("expected total 3, got %d", res.Total)
	}
}

func TestSearchService_Radius_RejectsNonPositiveRadius(t *testing.T) {
	svc := usecases.NewSearchService(&mockListingRepo{}, nil, usecases.DefaultOptions())

	for _, radius := range []float64{0, -2.5} {
		_, err := svc.Radius(context.Background(), domain.GeoPoint{}, radius, domain.SearchFilters{}, query.Page{})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("radius %v: expected ErrInvalidArgument, got %v", radius, err)
		}
	}
}

func TestSearchService_Radius_ForcesActiveStatus(t *testing.T) {
	var captured query.Predicate
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			captured = pred
			return nil, 0, nil
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	// A caller-supplied status override must not leak into the public path.
	paused := domain.StatusPaused
	_, err := svc.Radius(context.Background(), domain.GeoPoint{Lat: 43.26, Lng: -2.93}, 2, domain.SearchFilters{Status: &paused}, query.Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, ok := hasCond(captured, query.FieldStatus, query.OpEq)
	if !ok || c.Value != "active" {
		t.Errorf("expected forced status=active, got %+v", c)
	}
}

func TestSearchService_Radius_AddsBoundingBoxPreFilter(t *testing.T) {
	var captured query.Predicate
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			captured = pred
			return nil, 0, nil
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	center := domain.GeoPoint{Lat: 43.263, Lng: -2.935}
	_, err := svc.Radius(context.Background(), center, 5, domain.SearchFilters{}, query.Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	south, ok := hasCond(captured, query.FieldLatitude, query.OpGte)
	if !ok {
		t.Fatal("expected latitude >= pre-filter condition")
	}
	if v := south.Value.(float64); v >= center.Lat {
		t.Errorf("south edge %v not below center %v", v, center.Lat)
	}
	if _, ok := hasCond(captured, query.FieldLatitude, query.OpNotNull); !ok {
		t.Error("expected latitude not-null condition")
	}
	if _, ok := hasCond(captured, query.FieldLongitude, query.OpNotNull); !ok {
		t.Error("expected longitude not-null condition")
	}
}

func TestSearchService_Radius_SkipsListingsWithoutCoordinates(t *testing.T) {
	noCoords := domain.Listing{ID: "ghost", Status: domain.StatusActive}
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			return []domain.Listing{noCoords, activeListing("ok", -33.87, 151.21)}, 2, nil
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	res, err := svc.Radius(context.Background(), domain.GeoPoint{Lat: -33.87, Lng: 151.21}, 5, domain.SearchFilters{}, query.Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Listing.ID != "ok" {
		t.Errorf("coordinate-less listing leaked into geo results: %+v", res.Items)
	}
}

func TestSearchService_Bounds_AnnotatesFromCentroid(t *testing.T) {
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			return []domain.Listing{activeListing("l1", 43.30, -2.90)}, 1, nil
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	b := domain.Bounds{North: 43.40, South: 43.20, East: -2.80, West: -3.00}
	res, err := svc.Bounds(context.Background(), b, domain.SearchFilters{}, query.Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}

	// The listing sits exactly at the viewport centroid.
	if d := res.Items[0].DistanceKm; d > 0.001 {
		t.Errorf("distance from centroid = %v, want ~0", d)
	}
	if b := res.Items[0].BearingDeg; b < 0 || b >= 360 {
		t.Errorf("bearing %v out of [0,360)", b)
	}
}

func TestSearchService_Bounds_RejectsInvertedEdges(t *testing.T) {
	svc := usecases.NewSearchService(&mockListingRepo{}, nil, usecases.DefaultOptions())

	bad := []domain.Bounds{
		{North: 1, South: 2, East: 1, West: 0},  // north below south
		{North: 2, South: 1, East: -1, West: 0}, // east west of west
	}
	for _, b := range bad {
		if _, err := svc.Bounds(context.Background(), b, domain.SearchFilters{}, query.Page{}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("bounds %+v: expected ErrInvalidArgument, got %v", b, err)
		}
	}
}

func TestSearchService_Nearest_SortsAndTruncates(t *testing.T) {
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			return []domain.Listing{
				activeListing("far", 43.40, -2.93),
				activeListing("near", 43.264, -2.935),
				activeListing("mid", 43.30, -2.93),
			}, 3, nil
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	got, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 43.263, Lng: -2.935}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Listing.ID != "near" || got[1].Listing.ID != "mid" {
		t.Errorf("expected [near mid], got [%s %s]", got[0].Listing.ID, got[1].Listing.ID)
	}
	if got[0].DistanceKm > got[1].DistanceKm {
		t.Error("results not ordered by ascending distance")
	}
}

func TestSearchService_Nearest_FewerThanLimitIsNotAnError(t *testing.T) {
	// The fixed 50 km pre-filter means sparse regions legitimately return
	// fewer results than requested.
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			return []domain.Listing{activeListing("only", 43.27, -2.94)}, 1, nil
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	got, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 43.263, Lng: -2.935}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 result, got %d", len(got))
	}
}

func TestSearchService_Nearest_ScanCapExceeded(t *testing.T) {
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			return nil, 10001, nil
		},
	}
	opts := usecases.DefaultOptions()
	opts.MaxScan = 10000
	svc := usecases.NewSearchService(repo, nil, opts)

	_, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 43.263, Lng: -2.935}, 5)
	if !errors.Is(err, domain.ErrResultSetTooLarge) {
		t.Errorf("expected ErrResultSetTooLarge, got %v", err)
	}
}

func TestSearchService_Nearest_RejectsNonPositiveLimit(t *testing.T) {
	svc := usecases.NewSearchService(&mockListingRepo{}, nil, usecases.DefaultOptions())
	if _, err := svc.Nearest(context.Background(), domain.GeoPoint{}, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSearchService_Nearest_CachesResults(t *testing.T) {
	calls := 0
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			calls++
			return []domain.Listing{activeListing("l1", 43.264, -2.935)}, 1, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewSearchService(repo, cache, usecases.DefaultOptions())

	p := domain.GeoPoint{Lat: 43.263, Lng: -2.935}
	if _, err := svc.Nearest(context.Background(), p, 5); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.Nearest(context.Background(), p, 5); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected 1 store scan, got %d", calls)
	}
	if cache.hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", cache.hits)
	}
}

func TestSearchService_ByCriteria_HonorsStatusOverride(t *testing.T) {
	var captured query.Predicate
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			captured = pred
			return nil, 0, nil
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	rented := domain.StatusRented
	_, err := svc.ByCriteria(context.Background(), domain.SearchFilters{Status: &rented}, query.Page{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, ok := hasCond(captured, query.FieldStatus, query.OpEq)
	if !ok || c.Value != "rented" {
		t.Errorf("expected status override rented, got %+v", c)
	}
}

func TestSearchService_ByCriteria_PropagatesStoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockListingRepo{
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			return nil, 0, storeErr
		},
	}
	svc := usecases.NewSearchService(repo, nil, usecases.DefaultOptions())

	_, err := svc.ByCriteria(context.Background(), domain.SearchFilters{}, query.Page{})
	if !errors.Is(err, storeErr) {
		t.Errorf("store error not propagated unchanged: %v", err)
	}
}
