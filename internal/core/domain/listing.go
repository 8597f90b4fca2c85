package domain

import (
	"time"

	"github.com/samirrijal/aterpe/internal/pkg/geospatial"
)

// ListingStatus is the lifecycle state of a rental listing.
// Only active listings are visible to public search paths.
type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusPaused  ListingStatus = "paused"
	StatusRented  ListingStatus = "rented"
	StatusDeleted ListingStatus = "deleted"
)

// Listing represents a rental property. The search engine reads listings from
// the store but never writes them; the ingestor owns the write path.
// Latitude/Longitude are nullable: a listing without coordinates never appears
// in any geo query, regardless of its other attributes.
type Listing struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Address     string        `json:"address,omitempty"`
	City        string        `json:"city"`
	District    string        `json:"district,omitempty"`
	Zip         string        `json:"zip,omitempty"`

	PropertyType string        `json:"property_type,omitempty"` // apartment, house, studio, room
	RentalType   string        `json:"rental_type,omitempty"`   // long_term, short_term, sublet
	Status       ListingStatus `json:"status"`

	Price   *float64 `json:"price,omitempty"`   // monthly rent
	Deposit *float64 `json:"deposit,omitempty"`

	Rooms       *int     `json:"rooms,omitempty"`
	Bathrooms   *int     `json:"bathrooms,omitempty"`
	AreaSqm     *float64 `json:"area_sqm,omitempty"`
	Floor       *int     `json:"floor,omitempty"`
	TotalFloors *int     `json:"total_floors,omitempty"`

	Parking     bool     `json:"parking"`
	PetsAllowed bool     `json:"pets_allowed"`
	Furnished   bool     `json:"furnished"`
	ShortTerm   bool     `json:"short_term"`
	Options     []string `json:"options,omitempty"` // amenities: elevator, balcony, ...

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	AvailableFrom *time.Time `json:"available_from,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasCoordinates reports whether the listing can take part in geo queries.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// DistanceKmFrom returns the great-circle distance from p to the listing.
// Listings without coordinates yield 0 rather than an error: geometry over
// missing input is a total function here.
func (l *Listing) DistanceKmFrom(p GeoPoint) float64 {
	if !l.HasCoordinates() {
		return 0
	}
	return geospatial.DistanceKm(p.Lat, p.Lng, *l.Latitude, *l.Longitude)
}

// BearingDegFrom returns the initial compass bearing from p toward the
// listing, in [0, 360). Missing coordinates yield 0.
func (l *Listing) BearingDegFrom(p GeoPoint) float64 {
	if !l.HasCoordinates() {
		return 0
	}
	return geospatial.BearingDeg(p.Lat, p.Lng, *l.Latitude, *l.Longitude)
}

// GeoListing is a listing annotated with its distance and bearing from a
// reference point. Built per query, never persisted.
type GeoListing struct {
	Listing    Listing `json:"listing"`
	DistanceKm float64 `json:"distance_km"`
	BearingDeg float64 `json:"bearing_deg"`
}

// GeoSearchResult is one page of distance-annotated results. Total is the
// store-side match count before exact-radius refinement, so a radius search
// page may hold fewer items than the requested size (bounding-box corner
// candidates get dropped after the exact distance check).
type GeoSearchResult struct {
	Items  []GeoListing `json:"items"`
	Total  int          `json:"total"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}

// SearchResult is one page of plain listings from a criteria search.
type SearchResult struct {
	Items  []Listing `json:"items"`
	Total  int       `json:"total"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}

// Cluster is a zoom-level aggregate of nearby listings, rendered as a single
// map marker. Rebuilt on every call; clusters have no cross-call identity.
type Cluster struct {
	CenterLat    float64  `json:"center_lat"`
	CenterLng    float64  `json:"center_lng"`
	Count        int      `json:"count"`
	MemberIDs    []string `json:"member_ids"`
	AveragePrice *float64 `json:"average_price,omitempty"` // nil when no member has a price
}
