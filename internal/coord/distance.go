package coord

import "math"

// Distance returns the great-circle distance in meters between two WGS-84
// points using the spherical law of cosines on a sphere of EarthRadius.
func Distance(latA, lngA, latB, lngB float64) float64 {
	const pi180 = math.Pi / 180
	arcLatA := latA * pi180
	arcLatB := latB * pi180
	x := math.Cos(arcLatA) * math.Cos(arcLatB) * math.Cos((lngA-lngB)*pi180)
	y := math.Sin(arcLatA) * math.Sin(arcLatB)
	s := x + y
	// Rounding can push s just past ±1 for identical or antipodal points.
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	alpha := math.Acos(s)
	return alpha * EarthRadius
}
