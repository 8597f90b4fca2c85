package domain

// ListingEventType discriminates listing-change events on the broker.
type ListingEventType string

const (
	ListingUpdated ListingEventType = "updated"
	ListingRemoved ListingEventType = "removed"
)

// ListingEvent is the wire payload for a listing change. Listing is nil on
// removal; consumers key invalidation and relays off ListingID and City.
type ListingEvent struct {
	Type      ListingEventType `json:"type"`
	ListingID string           `json:"listing_id"`
	City      string           `json:"city"`
	Listing   *Listing         `json:"listing,omitempty"`
}
