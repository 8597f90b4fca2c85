package query

// Op is a predicate operator. The set mirrors what the listing store contract
// supports: equality, one-sided ranges, case-insensitive containment,
// list-superset matching, boolean equality, and null checks.
type Op string

const (
	OpEq           Op = "eq"
	OpNeq          Op = "neq"
	OpGte          Op = "gte"
	OpLte          Op = "lte"
	OpContainsFold Op = "contains_fold" // case-insensitive substring
	OpHasAll       Op = "has_all"       // listing option set ⊇ requested list
	OpNotNull      Op = "not_null"
	OpGteOrNull    Op = "gte_or_null" // field >= value, unknown values stay in
	OpNeqField     Op = "neq_field"   // field ≠ other field, null-safe
)

// Condition is one attribute constraint. Field names are domain attribute
// names; the store adapter maps them to columns.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Predicate is an immutable conjunction of conditions. The zero value matches
// everything; And returns a new Predicate and never mutates the receiver.
type Predicate struct {
	conds []Condition
}

// And returns a copy of p extended with c.
func (p Predicate) And(c Condition) Predicate {
	next := make([]Condition, len(p.conds), len(p.conds)+1)
	copy(next, p.conds)
	return Predicate{conds: append(next, c)}
}

// Conditions returns the conjunction in insertion order.
func (p Predicate) Conditions() []Condition {
	return p.conds
}

// Len returns the number of conditions.
func (p Predicate) Len() int {
	return len(p.conds)
}

// Sort is a store-side ordering request.
type Sort struct {
	Field string
	Desc  bool
}

// Page is an offset/limit window into a result set.
type Page struct {
	Offset int
	Limit  int
}

// Normalize clamps a page request to sane values.
func (pg Page) Normalize(defaultLimit, maxLimit int) Page {
	if pg.Offset < 0 {
		pg.Offset = 0
	}
	if pg.Limit <= 0 || pg.Limit > maxLimit {
		pg.Limit = defaultLimit
	}
	return pg
}
