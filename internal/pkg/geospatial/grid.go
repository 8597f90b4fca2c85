package geospatial

import "math"

// CellSizeDeg returns the clustering grid cell size in degrees for a map zoom
// level: the base size halves for every zoom step above 10, so higher zoom
// produces a finer grid.
func CellSizeDeg(baseDeg float64, zoom int) float64 {
	exp := zoom - 10
	if exp < 0 {
		exp = 0
	}
	return baseDeg / math.Pow(2, float64(exp))
}

// CellKey identifies a grid cell by its floored lat/lng indices.
type CellKey struct {
	Row int64
	Col int64
}

// CellOf assigns a coordinate to its grid cell for the given cell size.
func CellOf(lat, lng, cellSizeDeg float64) CellKey {
	return CellKey{
		Row: int64(math.Floor(lat / cellSizeDeg)),
		Col: int64(math.Floor(lng / cellSizeDeg)),
	}
}

// Round6 rounds a coordinate to 6 decimal places (~0.1 m), the precision used
// for cluster centroids.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
