package geospatial

import (
	"math"
	"testing"
)

func TestCellSizeDeg(t *testing.T) {
	cases := []struct {
		zoom int
		want float64
	}{
		{1, 0.1},
		{5, 0.1},
		{10, 0.1},
		{11, 0.05},
		{12, 0.025},
		{14, 0.00625},
		{20, 0.1 / 1024},
	}
	for _, tc := range cases {
		if got := CellSizeDeg(0.1, tc.zoom); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("CellSizeDeg(0.1, %d) = %v, want %v", tc.zoom, got, tc.want)
		}
	}
}

func TestCellOf(t *testing.T) {
	size := 0.1
	a := CellOf(43.263, -2.935, size)
	b := CellOf(43.269, -2.931, size)
	if a != b {
		t.Errorf("nearby points landed in different cells: %v vs %v", a, b)
	}

	c := CellOf(43.263, -2.935, size)
	d := CellOf(43.463, -2.935, size)
	if c == d {
		t.Error("distant points landed in the same cell")
	}

	// Negative coordinates floor toward -inf, not toward zero.
	if got := CellOf(-0.05, -0.05, size); got.Row != -1 || got.Col != -1 {
		t.Errorf("CellOf(-0.05,-0.05) = %v, want {-1 -1}", got)
	}
}

func TestRound6(t *testing.T) {
	if got := Round6(43.2634567891); got != 43.263457 {
		t.Errorf("Round6 = %v, want 43.263457", got)
	}
	if got := Round6(-2.93499999); got != -2.935 {
		t.Errorf("Round6 = %v, want -2.935", got)
	}
}
