package usecases

// Options tunes the search services. Values mirror the search section of the
// application config; the bands and radii are tunables, not contract.
type Options struct {
	// NearestRadiusKm is the fixed pre-filter radius for nearest-neighbor
	// search. Sparse regions can return fewer results than requested; there
	// is no expanding-radius retry.
	NearestRadiusKm float64

	// MaxScan caps how many rows an unbounded fetch (nearest, clustering) may
	// materialize before the call fails with ErrResultSetTooLarge.
	MaxScan int

	// ClusterBaseCellDeg is the grid cell size at zoom ≤ 10; it halves per
	// zoom step above that.
	ClusterBaseCellDeg float64

	// SimilarPriceBand and SimilarAreaBand are the ± fractions a candidate
	// may deviate from the reference listing.
	SimilarPriceBand float64
	SimilarAreaBand  float64
}

// DefaultOptions returns the tuning used when no config is supplied.
func DefaultOptions() Options {
	return Options{
		NearestRadiusKm:    50,
		MaxScan:            5000,
		ClusterBaseCellDeg: 0.1,
		SimilarPriceBand:   0.30,
		SimilarAreaBand:    0.20,
	}
}
