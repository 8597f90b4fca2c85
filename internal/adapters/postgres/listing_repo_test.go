package postgres

import (
	"strings"
	"testing"

	"github.com/samirrijal/aterpe/internal/core/domain"
	"github.com/samirrijal/aterpe/internal/core/query"
)

func TestBuildWhereEmptyPredicate(t *testing.T) {
	where, args, err := buildWhere(query.Predicate{})
	if err != nil {
		t.Fatal(err)
	}
	if where != "TRUE" {
		t.Errorf("where = %q, want TRUE", where)
	}
	if len(args) != 0 {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestBuildWhereOperators(t *testing.T) {
	tests := []struct {
		name     string
		cond     query.Condition
		wantSQL  string
		wantArgs int
	}{
		{"eq", query.Condition{Field: query.FieldStatus, Op: query.OpEq, Value: "active"}, "status = $1", 1},
		{"neq", query.Condition{Field: query.FieldID, Op: query.OpNeq, Value: "x"}, "id <> $1", 1},
		{"gte", query.Condition{Field: query.FieldPrice, Op: query.OpGte, Value: 350.0}, "price >= $1", 1},
		{"lte", query.Condition{Field: query.FieldPrice, Op: query.OpLte, Value: 650.0}, "price <= $1", 1},
		{"contains", query.Condition{Field: query.FieldCity, Op: query.OpContainsFold, Value: "bilbao"}, "city ILIKE '%' || $1 || '%'", 1},
		{"has_all", query.Condition{Field: query.FieldOptions, Op: query.OpHasAll, Value: []string{"elevator"}}, "options @> $1", 1},
		{"not_null", query.Condition{Field: query.FieldLatitude, Op: query.OpNotNull}, "latitude IS NOT NULL", 0},
		{"gte_or_null", query.Condition{Field: query.FieldFloor, Op: query.OpGteOrNull, Value: 1},
			"(floor IS NULL OR floor >= $1)", 1},
		{"neq_field", query.Condition{Field: query.FieldFloor, Op: query.OpNeqField, Value: query.FieldTotalFloors},
			"(floor IS NULL OR total_floors IS NULL OR floor <> total_floors)", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := query.Predicate{}.And(tt.cond)
			where, args, err := buildWhere(pred)
			if err != nil {
				t.Fatal(err)
			}
			if where != tt.wantSQL {
				t.Errorf("where = %q, want %q", where, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %v, want %d of them", args, tt.wantArgs)
			}
		})
	}
}

func TestBuildWhereKeywordExpandsTextColumns(t *testing.T) {
	pred := query.Predicate{}.And(query.Condition{Field: query.FieldKeyword, Op: query.OpContainsFold, Value: "harbour"})
	where, args, err := buildWhere(pred)
	if err != nil {
		t.Fatal(err)
	}
	for _, col := range []string{"title", "description", "address"} {
		if !strings.Contains(where, col+" ILIKE") {
			t.Errorf("keyword clause misses %s: %q", col, where)
		}
	}
	// Single arg bound three times.
	if len(args) != 1 || strings.Count(where, "$1") != 3 {
		t.Errorf("keyword should bind one arg thrice, got args=%v where=%q", args, where)
	}
}

func TestBuildWhereAvailabilityIsNullInclusive(t *testing.T) {
	pred := query.Predicate{}.And(query.Condition{Field: query.FieldAvailable, Op: query.OpLte, Value: "2026-09-01"})
	where, _, err := buildWhere(pred)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(where, "available_from IS NULL OR") {
		t.Errorf("availability clause must keep unset rows: %q", where)
	}
}

func TestBuildWhereSequentialPlaceholders(t *testing.T) {
	f := 1.0
	city := "Sydney"
	pred := query.FromFilters(domain.SearchFilters{City: &city, MinPrice: &f, MaxPrice: &f})
	where, args, err := buildWhere(pred)
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 4 { // status, city, min, max
		t.Fatalf("expected 4 args, got %v", args)
	}
	for i := 1; i <= 4; i++ {
		if !strings.Contains(where, "$"+string(rune('0'+i))) {
			t.Errorf("missing placeholder $%d in %q", i, where)
		}
	}
	if !strings.Contains(where, " AND ") {
		t.Errorf("conditions not conjoined: %q", where)
	}
}

func TestBuildWhereRejectsUnknownAttribute(t *testing.T) {
	pred := query.Predicate{}.And(query.Condition{Field: "bogus", Op: query.OpEq, Value: 1})
	if _, _, err := buildWhere(pred); err == nil {
		t.Error("expected error for unknown attribute")
	}
}

func TestBuildOrderBy(t *testing.T) {
	tests := []struct {
		sort query.Sort
		want string
	}{
		{query.Sort{}, "created_at DESC, id"},
		{query.Sort{Field: query.FieldPrice}, "price ASC, id"},
		{query.Sort{Field: query.FieldCreated, Desc: true}, "created_at DESC, id"},
	}
	for _, tt := range tests {
		got, err := buildOrderBy(tt.sort)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("buildOrderBy(%+v) = %q, want %q", tt.sort, got, tt.want)
		}
	}

	if _, err := buildOrderBy(query.Sort{Field: "bogus"}); err == nil {
		t.Error("expected error for unknown sort attribute")
	}
}
