package ports

import (
	"context"

	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/query"
)

// ListingRepository is the read contract the search engine consumes. Scan
// applies a predicate with store-side sorting and pagination and reports the
// total match count alongside the page. GetByID returns
// domain.ErrListingNotFound for absent ids.
type ListingRepository interface {
	Scan(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Listing, error)
}

// ListingWriter is the ingest-side contract. The search services never write;
// only the feed ingestor depends on this.
type ListingWriter interface {
	Upsert(ctx context.Context, l *domain.Listing) error
	UpsertBatch(ctx context.Context, listings []domain.Listing) error
}
