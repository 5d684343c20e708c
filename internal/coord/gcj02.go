package coord

import "math"

const (
	// EarthRadius is the WGS-84 semi-major axis in meters.
	EarthRadius = 6378137.0

	// ee is the eccentricity squared of the Krasovsky ellipsoid GCJ-02 was
	// defined against.
	ee = 0.00669342162296594323

	// DefaultTolerance is the residual bound of the exact GCJ-02 inverse, in degrees.
	DefaultTolerance = 0.000001
	// DefaultMaxIterations bounds the bisection steps of the exact inverse.
	DefaultMaxIterations = 30

	// initDelta is the initial bracket half-width of the exact inverse.
	initDelta = 0.01
)

// China bounding box. Outside of it GCJ-02 and WGS-84 coincide.
const (
	chinaMinLng = 72.004
	chinaMaxLng = 137.8347
	chinaMinLat = 0.8293
	chinaMaxLat = 55.8271
)

// OutOfChina reports whether (lat, lng) lies outside the rectangular envelope
// in which GCJ-02 applies its offset. The envelope is coarse: parts of
// neighbouring countries are inside it.
func OutOfChina(lat, lng float64) bool {
	return !(chinaMinLng <= lng && lng <= chinaMaxLng && chinaMinLat <= lat && lat <= chinaMaxLat)
}

// Transform is the GCJ-02 distortion kernel. x and y are the longitude and
// latitude offsets from (105°E, 35°N); the result is in kernel units and has
// to be scaled by Delta.
//
// The coefficients are fixed by the datum and must not be altered, nor the
// summation order changed.
func Transform(x, y float64) (lat, lng float64) {
	xy := x * y
	absX := math.Sqrt(math.Abs(x))
	xPi := x * math.Pi
	yPi := y * math.Pi
	d := 20.0*math.Sin(6.0*xPi) + 20.0*math.Sin(2.0*xPi)

	lat = d
	lng = d

	lat += 20.0*math.Sin(yPi) + 40.0*math.Sin(yPi/3.0)
	lng += 20.0*math.Sin(xPi) + 40.0*math.Sin(xPi/3.0)

	lat += 160.0*math.Sin(yPi/12.0) + 320*math.Sin(yPi/30.0)
	lng += 150.0*math.Sin(xPi/12.0) + 300.0*math.Sin(xPi/30.0)

	lat *= 2.0 / 3.0
	lng *= 2.0 / 3.0

	lat += -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*xy + 0.2*absX
	lng += 300.0 + x + 2.0*y + 0.1*x*x + 0.1*xy + 0.1*absX

	return
}

// Delta returns the GCJ-02 offset in degrees at (lat, lng). The kernel
// output is scaled by the meridian and parallel radii of curvature at lat.
func Delta(lat, lng float64) (dLat, dLng float64) {
	dLat, dLng = Transform(lng-105.0, lat-35.0)
	radLat := lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - ee*magic*magic
	sqrtMagic := math.Sqrt(magic)
	dLat = (dLat * 180.0) / ((EarthRadius * (1 - ee)) / (magic * sqrtMagic) * math.Pi)
	dLng = (dLng * 180.0) / (EarthRadius / sqrtMagic * math.Cos(radLat) * math.Pi)
	return
}

// WGS84ToGCJ02 converts a WGS-84 coordinate to GCJ-02.
func WGS84ToGCJ02(wgsLat, wgsLng float64) (gcjLat, gcjLng float64) {
	if OutOfChina(wgsLat, wgsLng) {
		return wgsLat, wgsLng
	}
	dLat, dLng := Delta(wgsLat, wgsLng)
	return wgsLat + dLat, wgsLng + dLng
}

// GCJ02ToWGS84 converts a GCJ-02 coordinate to WGS-84 by subtracting the
// offset evaluated at the GCJ-02 point. The result is off by 1-2 meters; use
// GCJ02ToWGS84Exact when that matters.
func GCJ02ToWGS84(gcjLat, gcjLng float64) (wgsLat, wgsLng float64) {
	if OutOfChina(gcjLat, gcjLng) {
		return gcjLat, gcjLng
	}
	dLat, dLng := Delta(gcjLat, gcjLng)
	return gcjLat - dLat, gcjLng - dLng
}

// GCJ02ToWGS84Exact inverts WGS84ToGCJ02 to within DefaultTolerance degrees.
func GCJ02ToWGS84Exact(gcjLat, gcjLng float64) (wgsLat, wgsLng float64) {
	return GCJ02ToWGS84ExactWith(gcjLat, gcjLng, DefaultTolerance, DefaultMaxIterations)
}

// GCJ02ToWGS84ExactWith searches the WGS-84 coordinate whose GCJ-02 image is
// within tolerance of (gcjLat, gcjLng). It bisects a ±0.01° bracket on each
// axis independently, moving the bound on the side the residual points to.
// If the tolerance is not reached after maxIterations the last midpoint is
// returned.
func GCJ02ToWGS84ExactWith(gcjLat, gcjLng, tolerance float64, maxIterations int) (wgsLat, wgsLng float64) {
	mLat, mLng := gcjLat-initDelta, gcjLng-initDelta
	pLat, pLng := gcjLat+initDelta, gcjLng+initDelta
	wgsLat, wgsLng = gcjLat, gcjLng

	for i := 0; i < maxIterations; i++ {
		wgsLat = (mLat + pLat) / 2
		wgsLng = (mLng + pLng) / 2
		tmpLat, tmpLng := WGS84ToGCJ02(wgsLat, wgsLng)
		dLat := tmpLat - gcjLat
		dLng := tmpLng - gcjLng
		if math.Abs(dLat) < tolerance && math.Abs(dLng) < tolerance {
			return wgsLat, wgsLng
		}
		if dLat > 0 {
			pLat = wgsLat
		} else {
			mLat = wgsLat
		}
		if dLng > 0 {
			pLng = wgsLng
		} else {
			mLng = wgsLng
		}
	}
	return wgsLat, wgsLng
}
