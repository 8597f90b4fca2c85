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

func TestSimilarityService_BandsFromReference(t *testing.T) {
	ref := &domain.Listing{
		ID:           "ref-1",
		City:         "Sydney",
		PropertyType: "apartment",
		Status:       domain.StatusActive,
		Price:        fp(500),
		AreaSqm:      fp(80),
	}

	var captured query.Predicate
	repo := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			return ref, nil
		},
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			captured = pred
			return []domain.Listing{{ID: "cand-1"}}, 1, nil
		},
	}
	svc := usecases.NewSimilarityService(repo, usecases.DefaultOptions())

	got, err := svc.Similar(context.Background(), "ref-1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}

	// Price within ±30% of 500 → [350, 650].
	lo, ok := hasCond(captured, query.FieldPrice, query.OpGte)
	if !ok || math.Abs(lo.Value.(float64)-350) > 1e-9 {
		t.Errorf("expected price >= 350, got %+v", lo)
	}
	hi, ok := hasCond(captured, query.FieldPrice, query.OpLte)
	if !ok || math.Abs(hi.Value.(float64)-650) > 1e-9 {
		t.Errorf("expected price <= 650, got %+v", hi)
	}

	// Area within ±20% of 80 → [64, 96].
	alo, ok := hasCond(captured, query.FieldArea, query.OpGte)
	if !ok || math.Abs(alo.Value.(float64)-64) > 1e-9 {
		t.Errorf("expected area >= 64, got %+v", alo)
	}

	// No district on the reference → same-city fallback.
	city, ok := hasCond(captured, query.FieldCity, query.OpContainsFold)
	if !ok || city.Value != "Sydney" {
		t.Errorf("expected city fallback, got %+v", city)
	}
	if _, ok := hasCond(captured, query.FieldDistrict, query.OpContainsFold); ok {
		t.Error("district condition present although reference has none")
	}

	// The reference itself is excluded.
	excl, ok := hasCond(captured, query.FieldID, query.OpNeq)
	if !ok || excl.Value != "ref-1" {
		t.Errorf("expected id != ref-1, got %+v", excl)
	}

	if pt, ok := hasCond(captured, query.FieldPropertyType, query.OpEq); !ok || pt.Value != "apartment" {
		t.Errorf("expected property_type match, got %+v", pt)
	}
}

func TestSimilarityService_DistrictBeatsCity(t *testing.T) {
	ref := &domain.Listing{ID: "r", City: "Bilbao", District: "Deusto", Status: domain.StatusActive}

	var captured query.Predicate
	repo := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) { return ref, nil },
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			captured = pred
			return nil, 0, nil
		},
	}
	svc := usecases.NewSimilarityService(repo, usecases.DefaultOptions())

	if _, err := svc.Similar(context.Background(), "r", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d, ok := hasCond(captured, query.FieldDistrict, query.OpContainsFold); !ok || d.Value != "Deusto" {
		t.Errorf("expected district condition, got %+v", d)
	}
	if _, ok := hasCond(captured, query.FieldCity, query.OpContainsFold); ok {
		t.Error("city condition present although reference has a district")
	}
}

func TestSimilarityService_AbsentReferenceYieldsEmptyResult(t *testing.T) {
	repo := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			return nil, domain.ErrListingNotFound
		},
	}
	svc := usecases.NewSimilarityService(repo, usecases.DefaultOptions())

	got, err := svc.Similar(context.Background(), "missing", 5)
	if err != nil {
		t.Fatalf("absent reference must not be an error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d items", len(got))
	}
}

func TestSimilarityService_UnsetAttributesDoNotConstrain(t *testing.T) {
	// Reference with no price, area, or types: only the location condition
	// (plus active status and the self-exclusion) may appear.
	ref := &domain.Listing{ID: "r", City: "Bilbao", Status: domain.StatusActive}

	var captured query.Predicate
	repo := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) { return ref, nil },
		scanFn: func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
			captured = pred
			return nil, 0, nil
		},
	}
	svc := usecases.NewSimilarityService(repo, usecases.DefaultOptions())

	if _, err := svc.Similar(context.Background(), "r", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Len() != 3 {
		t.Errorf("expected 3 conditions (status, city, id), got %d: %+v", captured.Len(), captured.Conditions())
	}
}

func TestSimilarityService_RejectsNonPositiveLimit(t *testing.T) {
	svc := usecases.NewSimilarityService(&mockListingRepo{}, usecases.DefaultOptions())
	if _, err := svc.Similar(context.Background(), "x", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSimilarityService_PropagatesStoreError(t *testing.T) {
	storeErr := errors.New("timeout")
	repo := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			return nil, storeErr
		},
	}
	svc := usecases.NewSimilarityService(repo, usecases.DefaultOptions())

	if _, err := svc.Similar(context.Background(), "x", 5); !errors.Is(err, storeErr) {
		t.Errorf("store error not propagated: %v", err)
	}
}
