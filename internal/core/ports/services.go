package ports

import (
	"context"

	"github.com/samirrijal/aterpe/internal/core/domain"
)

// CacheService provides read-through caching. Cache failures are soft:
// callers fall back to the store and never fail a query on a cache error.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes listing-change events to a message broker.
type EventPublisher interface {
	PublishListingUpdated(ctx context.Context, l *domain.Listing) error
	PublishListingRemoved(ctx context.Context, id, city string) error
}

// EventSubscriber consumes listing-change events, e.g. for cache
// invalidation or the WebSocket map relay.
type EventSubscriber interface {
	SubscribeListingEvents(ctx context.Context, handler func(ctx context.Context, e *domain.ListingEvent) error) error
}
