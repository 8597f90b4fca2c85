package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/query"
)

// listingColumns is the canonical select list, kept in sync with scanListing.
const listingColumns = `
	id, title, COALESCE(description, ''), COALESCE(address, ''), city,
	COALESCE(district, ''), COALESCE(zip, ''),
	COALESCE(property_type, ''), COALESCE(rental_type, ''), status,
	price, deposit, rooms, bathrooms, area_sqm, floor, total_floors,
	parking, pets_allowed, furnished, short_term, COALESCE(options, '{}'),
	latitude, longitude, available_from, created_at, updated_at`

// columnFor maps predicate attribute names to listings columns. The keyword
// pseudo-field is absent on purpose; the where builder expands it itself.
var columnFor = map[string]string{
	query.FieldID:           "id",
	query.FieldStatus:       "status",
	query.FieldCity:         "city",
	query.FieldDistrict:     "district",
	query.FieldZip:          "zip",
	query.FieldAddress:      "address",
	query.FieldPropertyType: "property_type",
	query.FieldRentalType:   "rental_type",
	query.FieldPrice:        "price",
	query.FieldDeposit:      "deposit",
	query.FieldRooms:        "rooms",
	query.FieldBathrooms:    "bathrooms",
	query.FieldArea:         "area_sqm",
	query.FieldFloor:        "floor",
	query.FieldTotalFloors:  "total_floors",
	query.FieldParking:      "parking",
	query.FieldPets:         "pets_allowed",
	query.FieldFurnished:    "furnished",
	query.FieldShortTerm:    "short_term",
	query.FieldOptions:      "options",
	query.FieldAvailable:    "available_from",
	query.FieldLatitude:     "latitude",
	query.FieldLongitude:    "longitude",
	query.FieldCreated:      "created_at",
	query.FieldModified:     "updated_at",
}

// ListingRepo implements ports.ListingRepository and ports.ListingWriter
// with pgx.
type ListingRepo struct {
	db *DB
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(db *DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// buildWhere renders a predicate as a WHERE clause with positional args.
// An empty predicate yields "TRUE" so callers can always interpolate it.
func buildWhere(pred query.Predicate) (string, []any, error) {
	conds := pred.Conditions()
	if len(conds) == 0 {
		return "TRUE", nil, nil
	}

	parts := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	for _, c := range conds {
		part, err := renderCondition(c, &args)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " AND "), args, nil
}

func renderCondition(c query.Condition, args *[]any) (string, error) {
	if c.Field == query.FieldKeyword {
		if c.Op != query.OpContainsFold {
			return "", fmt.Errorf("keyword supports contains only, got %s", c.Op)
		}
		*args = append(*args, c.Value)
		n := len(*args)
		return fmt.Sprintf("(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%' OR address ILIKE '%%' || $%d || '%%')", n, n, n), nil
	}

	col, ok := columnFor[c.Field]
	if !ok {
		return "", fmt.Errorf("unknown attribute %q", c.Field)
	}

	switch c.Op {
	case query.OpEq:
		*args = append(*args, c.Value)
		return fmt.Sprintf("%s = $%d", col, len(*args)), nil
	case query.OpNeq:
		*args = append(*args, c.Value)
		return fmt.Sprintf("%s <> $%d", col, len(*args)), nil
	case query.OpGte:
		*args = append(*args, c.Value)
		return fmt.Sprintf("%s >= $%d", col, len(*args)), nil
	case query.OpLte:
		*args = append(*args, c.Value)
		if col == "available_from" {
			// Unset availability means available now.
			return fmt.Sprintf("(available_from IS NULL OR available_from <= $%d)", len(*args)), nil
		}
		return fmt.Sprintf("%s <= $%d", col, len(*args)), nil
	case query.OpContainsFold:
		*args = append(*args, c.Value)
		return fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", col, len(*args)), nil
	case query.OpHasAll:
		*args = append(*args, c.Value)
		return fmt.Sprintf("%s @> $%d", col, len(*args)), nil
	case query.OpNotNull:
		return fmt.Sprintf("%s IS NOT NULL", col), nil
	case query.OpGteOrNull:
		*args = append(*args, c.Value)
		return fmt.Sprintf("(%s IS NULL OR %s >= $%d)", col, col, len(*args)), nil
	case query.OpNeqField:
		otherField, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("%s: neq_field wants an attribute name, got %T", c.Field, c.Value)
		}
		other, ok := columnFor[otherField]
		if !ok {
			return "", fmt.Errorf("unknown attribute %q", otherField)
		}
		// Null-safe: rows where either side is unknown stay in.
		return fmt.Sprintf("(%s IS NULL OR %s IS NULL OR %s <> %s)", col, other, col, other), nil
	default:
		return "", fmt.Errorf("%s: unsupported operator %s", c.Field, c.Op)
	}
}

// buildOrderBy renders the store-side sort with an id tiebreak so pages are
// deterministic under equal keys.
func buildOrderBy(sort query.Sort) (string, error) {
	if sort.Field == "" {
		return "created_at DESC, id", nil
	}
	col, ok := columnFor[sort.Field]
	if !ok {
		return "", fmt.Errorf("unknown sort attribute %q", sort.Field)
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, id", col, dir), nil
}

// Scan runs a predicate query with store-side sorting and pagination and
// reports the total match count alongside the page.
func (r *ListingRepo) Scan(ctx context.Context, pred query.Predicate, sort query.Sort, page query.Page) ([]domain.Listing, int, error) {
	where, args, err := buildWhere(pred)
	if err != nil {
		return nil, 0, fmt.Errorf("build predicate: %w", err)
	}
	orderBy, err := buildOrderBy(sort)
	if err != nil {
		return nil, 0, fmt.Errorf("build sort: %w", err)
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM listings WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	limitArgs := append(args, page.Limit, page.Offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM listings WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		listingColumns, where, orderBy, len(args)+1, len(args)+2,
	), limitArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, l)
	}
	return listings, total, rows.Err()
}

// GetByID returns a listing by id.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.db.Pool.QueryRow(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE id = $1", id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
		}
		return nil, err
	}
	return &l, nil
}

// GetByIDs returns multiple listings by id, in arbitrary order. Absent ids
// are silently skipped.
func (r *ListingRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Pool.Query(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

const upsertListingSQL = `
	INSERT INTO listings (
		id, title, description, address, city, district, zip,
		property_type, rental_type, status,
		price, deposit, rooms, bathrooms, area_sqm, floor, total_floors,
		parking, pets_allowed, furnished, short_term, options,
		latitude, longitude, available_from
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
	        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title, description = EXCLUDED.description,
	    address = EXCLUDED.address, city = EXCLUDED.city,
	    district = EXCLUDED.district, zip = EXCLUDED.zip,
	    property_type = EXCLUDED.property_type, rental_type = EXCLUDED.rental_type,
	    status = EXCLUDED.status,
	    price = EXCLUDED.price, deposit = EXCLUDED.deposit,
	    rooms = EXCLUDED.rooms, bathrooms = EXCLUDED.bathrooms,
	    area_sqm = EXCLUDED.area_sqm, floor = EXCLUDED.floor,
	    total_floors = EXCLUDED.total_floors,
	    parking = EXCLUDED.parking, pets_allowed = EXCLUDED.pets_allowed,
	    furnished = EXCLUDED.furnished, short_term = EXCLUDED.short_term,
	    options = EXCLUDED.options,
	    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
	    available_from = EXCLUDED.available_from,
	    updated_at = now()`

func upsertArgs(l *domain.Listing) []any {
	return []any{
		l.ID, l.Title, nullStr(l.Description), nullStr(l.Address), l.City,
		nullStr(l.District), nullStr(l.Zip),
		nullStr(l.PropertyType), nullStr(l.RentalType), string(l.Status),
		l.Price, l.Deposit, l.Rooms, l.Bathrooms, l.AreaSqm, l.Floor, l.TotalFloors,
		l.Parking, l.PetsAllowed, l.Furnished, l.ShortTerm, l.Options,
		l.Latitude, l.Longitude, l.AvailableFrom,
	}
}

// Upsert inserts or updates a single listing.
func (r *ListingRepo) Upsert(ctx context.Context, l *domain.Listing) error {
	_, err := r.db.Pool.Exec(ctx, upsertListingSQL, upsertArgs(l)...)
	return err
}

// UpsertBatch inserts many listings using pgx.Batch.
func (r *ListingRepo) UpsertBatch(ctx context.Context, listings []domain.Listing) error {
	batch := &pgx.Batch{}
	for i := range listings {
		batch.Queue(upsertListingSQL, upsertArgs(&listings[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range listings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.Address, &l.City,
		&l.District, &l.Zip,
		&l.PropertyType, &l.RentalType, &l.Status,
		&l.Price, &l.Deposit, &l.Rooms, &l.Bathrooms, &l.AreaSqm, &l.Floor, &l.TotalFloors,
		&l.Parking, &l.PetsAllowed, &l.Furnished, &l.ShortTerm, &l.Options,
		&l.Latitude, &l.Longitude, &l.AvailableFrom, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
