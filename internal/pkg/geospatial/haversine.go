package geospatial

import "math"

const earthRadiusKm = 6371.0

// kmPerDegreeLat is the approximate length of one degree of latitude.
const kmPerDegreeLat = 111.0

// DistanceKm calculates the great-circle distance in kilometers between two points.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// BearingDeg calculates the initial compass bearing in degrees from point 1
// toward point 2 along the great circle. The result is always in [0, 360).
func BearingDeg(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dLng := toRad(lng2 - lng1)

	y := math.Sin(dLng) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLng)

	deg := toDeg(math.Atan2(y, x))
	deg = math.Mod(deg+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// BoundingBoxDelta converts a search radius into a coarse lat/lng degree window
// around a point at the given latitude. The window over-selects near the box
// corners; callers refine with DistanceKm afterwards.
func BoundingBoxDelta(radiusKm, latDeg float64) (latDelta, lngDelta float64) {
	latDelta = radiusKm / kmPerDegreeLat

	cosLat := math.Cos(toRad(latDeg))
	if cosLat < 1e-9 {
		// Degenerate at the poles: every longitude is inside the radius.
		return latDelta, 180
	}
	lngDelta = radiusKm / (kmPerDegreeLat * cosLat)
	if lngDelta > 180 {
		lngDelta = 180
	}
	return latDelta, lngDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
