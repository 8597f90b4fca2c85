package query

import (
	"github.com/samirrijal/aterpe/internal/core/domain"
)

// Attribute names understood by the listing store adapter.
const (
	FieldStatus       = "status"
	FieldCity         = "city"
	FieldDistrict     = "district"
	FieldZip          = "zip"
	FieldAddress      = "address"
	FieldKeyword      = "keyword" // pseudo-field: title OR description OR address
	FieldPropertyType = "property_type"
	FieldRentalType   = "rental_type"
	FieldPrice        = "price"
	FieldDeposit      = "deposit"
	FieldRooms        = "rooms"
	FieldBathrooms    = "bathrooms"
	FieldArea         = "area_sqm"
	FieldFloor        = "floor"
	FieldTotalFloors  = "total_floors"
	FieldParking      = "parking"
	FieldPets         = "pets_allowed"
	FieldFurnished    = "furnished"
	FieldShortTerm    = "short_term"
	FieldOptions      = "options"
	FieldAvailable    = "available_from"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
	FieldCreated      = "created_at"
	FieldModified     = "updated_at"
	FieldID           = "id"
)

// FromFilters folds a SearchFilters value into an immutable Predicate.
// Absent fields contribute nothing; every present field contributes exactly
// one condition, so adding a filter can only shrink the result set.
func FromFilters(f domain.SearchFilters) Predicate {
	var p Predicate

	status := domain.StatusActive
	if f.Status != nil {
		status = *f.Status
	}
	p = p.And(Condition{Field: FieldStatus, Op: OpEq, Value: string(status)})

	if f.City != nil {
		p = p.And(Condition{Field: FieldCity, Op: OpContainsFold, Value: *f.City})
	}
	if f.District != nil {
		p = p.And(Condition{Field: FieldDistrict, Op: OpContainsFold, Value: *f.District})
	}
	if f.Zip != nil {
		p = p.And(Condition{Field: FieldZip, Op: OpEq, Value: *f.Zip})
	}
	if f.AddressKeyword != nil {
		p = p.And(Condition{Field: FieldAddress, Op: OpContainsFold, Value: *f.AddressKeyword})
	}
	if f.Keyword != nil {
		p = p.And(Condition{Field: FieldKeyword, Op: OpContainsFold, Value: *f.Keyword})
	}

	if f.PropertyType != nil {
		p = p.And(Condition{Field: FieldPropertyType, Op: OpEq, Value: *f.PropertyType})
	}
	if f.RentalType != nil {
		p = p.And(Condition{Field: FieldRentalType, Op: OpEq, Value: *f.RentalType})
	}

	p = andRangeF(p, FieldPrice, f.MinPrice, f.MaxPrice)
	p = andRangeF(p, FieldDeposit, f.MinDeposit, f.MaxDeposit)
	p = andRangeF(p, FieldArea, f.MinAreaSqm, f.MaxAreaSqm)
	p = andRangeI(p, FieldRooms, f.MinRooms, f.MaxRooms)
	p = andRangeI(p, FieldBathrooms, f.MinBathrooms, f.MaxBathrooms)
	p = andRangeI(p, FieldFloor, f.MinFloor, f.MaxFloor)

	if f.ExcludeBasement {
		// Excludes floor <= 0 only; an unknown floor is not a basement, so
		// listings without a floor stay in, same as the rooftop rule below.
		p = p.And(Condition{Field: FieldFloor, Op: OpGteOrNull, Value: 1})
	}
	if f.ExcludeRooftop {
		// Listings with unknown total_floors stay in: the adapter renders this
		// null-safe, excluding only floor == total_floors.
		p = p.And(Condition{Field: FieldFloor, Op: OpNeqField, Value: FieldTotalFloors})
	}

	if f.Parking != nil {
		p = p.And(Condition{Field: FieldParking, Op: OpEq, Value: *f.Parking})
	}
	if f.PetsAllowed != nil {
		p = p.And(Condition{Field: FieldPets, Op: OpEq, Value: *f.PetsAllowed})
	}
	if f.Furnished != nil {
		p = p.And(Condition{Field: FieldFurnished, Op: OpEq, Value: *f.Furnished})
	}
	if f.ShortTerm != nil {
		p = p.And(Condition{Field: FieldShortTerm, Op: OpEq, Value: *f.ShortTerm})
	}

	if len(f.RequiredOptions) > 0 {
		p = p.And(Condition{Field: FieldOptions, Op: OpHasAll, Value: f.RequiredOptions})
	}

	if f.AvailableFrom != nil {
		p = p.And(Condition{Field: FieldAvailable, Op: OpLte, Value: *f.AvailableFrom})
	}

	return p
}

func andRangeF(p Predicate, field string, min, max *float64) Predicate {
	if min != nil {
		p = p.And(Condition{Field: field, Op: OpGte, Value: *min})
	}
	if max != nil {
		p = p.And(Condition{Field: field, Op: OpLte, Value: *max})
	}
	return p
}

func andRangeI(p Predicate, field string, min, max *int) Predicate {
	if min != nil {
		p = p.And(Condition{Field: field, Op: OpGte, Value: *min})
	}
	if max != nil {
		p = p.And(Condition{Field: field, Op: OpLte, Value: *max})
	}
	return p
}

// WithCoordinates requires both coordinates to be present. Every geo path
// adds this so listings without a location never surface.
func (p Predicate) WithCoordinates() Predicate {
	return p.
		And(Condition{Field: FieldLatitude, Op: OpNotNull}).
		And(Condition{Field: FieldLongitude, Op: OpNotNull})
}

// WithinBox adds the rectangular pre-filter for a viewport or radius window.
func (p Predicate) WithinBox(b domain.Bounds) Predicate {
	return p.
		And(Condition{Field: FieldLatitude, Op: OpGte, Value: b.South}).
		And(Condition{Field: FieldLatitude, Op: OpLte, Value: b.North}).
		And(Condition{Field: FieldLongitude, Op: OpGte, Value: b.West}).
		And(Condition{Field: FieldLongitude, Op: OpLte, Value: b.East})
}

// ExcludingID removes a single listing, used by similarity search to drop the
// reference itself.
func (p Predicate) ExcludingID(id string) Predicate {
	return p.And(Condition{Field: FieldID, Op: OpNeq, Value: id})
}

// sortFields maps sort keys to store attributes.
var sortFields = map[domain.SortKey]string{
	domain.SortPrice:     FieldPrice,
	domain.SortDeposit:   FieldDeposit,
	domain.SortArea:      FieldArea,
	domain.SortCreated:   FieldCreated,
	domain.SortModified:  FieldModified,
	domain.SortAvailable: FieldAvailable,
	domain.SortRooms:     FieldRooms,
	domain.SortFloor:     FieldFloor,
}

// SortFor resolves the requested sort into a store-side ordering. The store
// cannot order by great-circle distance, so a distance sort fetches in stable
// newest-first order; geo services re-sort after exact refinement, and paths
// without a reference point just keep the newest-first order.
func SortFor(f domain.SearchFilters) Sort {
	if f.SortBy == domain.SortDistance {
		return Sort{Field: FieldCreated, Desc: true}
	}
	if field, ok := sortFields[f.SortBy]; ok {
		return Sort{Field: field, Desc: f.SortDesc}
	}
	return Sort{Field: FieldCreated, Desc: true}
}
