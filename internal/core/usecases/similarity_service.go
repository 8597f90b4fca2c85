package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/ports"
	"github.com/samirrijal/aterpe/internal/core/query"
)

// SimilarityService finds listings resembling a reference listing by
// attribute-band matching: same property/rental type, price and area within
// configured ± bands, and the reference's district (falling back to city).
type SimilarityService struct {
	listings ports.ListingRepository
	opts     Options
}

// NewSimilarityService creates a new SimilarityService.
func NewSimilarityService(listings ports.ListingRepository, opts Options) *SimilarityService {
	if opts.SimilarPriceBand <= 0 {
		opts = DefaultOptions()
	}
	return &SimilarityService{listings: listings, opts: opts}
}

// Similar returns up to limit listings similar to the reference, newest
// first. An absent reference id yields an empty result, not an error: the
// caller asked "what resembles X" and nothing resembles a listing that does
// not exist.
func (s *SimilarityService) Similar(ctx context.Context, refID string, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidArgument, limit)
	}

	ref, err := s.listings.GetByID(ctx, refID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return []domain.Listing{}, nil
		}
		return nil, err
	}

	filters := s.bandFilters(ref)
	pred := query.FromFilters(filters).ExcludingID(ref.ID)

	items, _, err := s.listings.Scan(ctx, pred,
		query.Sort{Field: query.FieldCreated, Desc: true},
		query.Page{Limit: limit})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// bandFilters derives the similarity criteria from the reference listing.
// Only attributes the reference actually carries constrain the candidates.
func (s *SimilarityService) bandFilters(ref *domain.Listing) domain.SearchFilters {
	var f domain.SearchFilters

	if ref.PropertyType != "" {
		pt := ref.PropertyType
		f.PropertyType = &pt
	}
	if ref.RentalType != "" {
		rt := ref.RentalType
		f.RentalType = &rt
	}

	if ref.Price != nil {
		min := *ref.Price * (1 - s.opts.SimilarPriceBand)
		max := *ref.Price * (1 + s.opts.SimilarPriceBand)
		f.MinPrice = &min
		f.MaxPrice = &max
	}
	if ref.AreaSqm != nil {
		min := *ref.AreaSqm * (1 - s.opts.SimilarAreaBand)
		max := *ref.AreaSqm * (1 + s.opts.SimilarAreaBand)
		f.MinAreaSqm = &min
		f.MaxAreaSqm = &max
	}

	// Location: district when the reference has one, else city.
	if ref.District != "" {
		d := ref.District
		f.District = &d
	} else if ref.City != "" {
		c := ref.City
		f.City = &c
	}

	return f
}
