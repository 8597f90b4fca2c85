package domain

import "time"

// SortKey selects the store-side ordering of search results.
type SortKey string

const (
	SortPrice     SortKey = "price"
	SortDeposit   SortKey = "deposit"
	SortArea      SortKey = "area"
	SortCreated   SortKey = "created"
	SortModified  SortKey = "modified"
	SortAvailable SortKey = "available"
	SortRooms     SortKey = "rooms"
	SortFloor     SortKey = "floor"
	SortDistance  SortKey = "distance"
)

// SearchFilters carries every optional search criterion. A nil field means
// "no constraint" — it is never interpreted as zero or false. Values are
// immutable per call.
type SearchFilters struct {
	City           *string
	District       *string
	Zip            *string
	AddressKeyword *string
	Keyword        *string // matches title, description, or address

	PropertyType *string
	RentalType   *string

	MinPrice   *float64
	MaxPrice   *float64
	MinDeposit *float64
	MaxDeposit *float64

	MinRooms     *int
	MaxRooms     *int
	MinBathrooms *int
	MaxBathrooms *int

	MinAreaSqm *float64
	MaxAreaSqm *float64

	MinFloor        *int
	MaxFloor        *int
	ExcludeBasement bool
	ExcludeRooftop  bool

	Parking     *bool
	PetsAllowed *bool
	Furnished   *bool
	ShortTerm   *bool

	RequiredOptions []string // listing must carry every option (AND semantics)

	AvailableFrom *time.Time

	// Status overrides the implicit active-only constraint. Only internal
	// criteria search honors it; the public geo paths always search active.
	Status *ListingStatus

	SortBy   SortKey
	SortDesc bool
}
