package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/usecases"
)

func TestListingService_GetByIDReadsThroughCache(t *testing.T) {
	calls := 0
	repo := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			calls++
			l := activeListing(id, 43.5, -2.5)
			return &l, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewListingService(repo, cache)

	for i := 0; i < 3; i++ {
		got, err := svc.GetByID(context.Background(), "l-1")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got.ID != "l-1" {
			t.Fatalf("call %d: got listing %q", i, got.ID)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 store read, got %d", calls)
	}
	if cache.hits != 2 {
		t.Errorf("expected 2 cache hits, got %d", cache.hits)
	}
}

func TestListingService_GetByIDNotFound(t *testing.T) {
	svc := usecases.NewListingService(&mockListingRepo{}, nil)

	if _, err := svc.GetByID(context.Background(), "nope"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
}

func TestListingService_InvalidateEvictsCachedCopy(t *testing.T) {
	calls := 0
	repo := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			calls++
			l := activeListing(id, 43.5, -2.5)
			return &l, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewListingService(repo, cache)

	if _, err := svc.GetByID(context.Background(), "l-1"); err != nil {
		t.Fatal(err)
	}
	svc.Invalidate(context.Background(), "l-1")
	if _, err := svc.GetByID(context.Background(), "l-1"); err != nil {
		t.Fatal(err)
	}

	if calls != 2 {
		t.Errorf("expected store re-read after invalidation, got %d reads", calls)
	}
	if len(cache.dels) != 1 || cache.dels[0] != "listings:id:l-1" {
		t.Errorf("unexpected cache deletions: %v", cache.dels)
	}
}

func TestListingService_GetByIDsEmptyInput(t *testing.T) {
	svc := usecases.NewListingService(&mockListingRepo{}, nil)

	got, err := svc.GetByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil result for empty input, got %v", got)
	}
}
