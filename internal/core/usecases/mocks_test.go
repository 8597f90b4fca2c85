package usecases_test

import (
	"context"
	"errors"
	"time"

	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/query"
)

// --- Mock ListingRepository ---

type mockListingRepo struct {
	scanFn     func(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error)
	getByIDFn  func(ctx context.Context, id string) (*domain.Listing, error)
	getByIDsFn func(ctx context.Context, ids []string) ([]domain.Listing, error)
}

func (m *mockListingRepo) Scan(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pred, sort, page)
	}
	return nil, 0, nil
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrListingNotFound
}

func (m *mockListingRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Listing, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	store map[string][]byte
	gets  int
	hits  int
	dels  []string
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.gets++
	if v, ok := m.store[key]; ok {
		m.hits++
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.dels = append(m.dels, key)
	delete(m.store, key)
	return nil
}

// --- Fixture helpers ---

func fp(v float64) *float64 { return &v }
func sp(v string) *string   { return &v }
func ip(v int) *int         { return &v }

func activeListing(id string, lat, lng float64) domain.Listing {
	return domain.Listing{
		ID:        id,
		City:      "Sydney",
		Status:    domain.StatusActive,
		Latitude:  fp(lat),
		Longitude: fp(lng),
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func hasCond(pred query.Predicate, field string, op query.Op) (query.Condition, bool) {
	for _, c := range pred.Conditions() {
		if c.Field == field && c.Op == op {
			return c, true
		}
	}
	return query.Condition{}, false
}
