package coord

import "math"

// xPi is the angular scale used by the BD-09 offset.
const xPi = math.Pi * 3000.0 / 180.0

// GCJ02ToBD09 converts a GCJ-02 coordinate to Baidu's BD-09. Points outside
// China are returned unchanged.
func GCJ02ToBD09(gcjLat, gcjLng float64) (bdLat, bdLng float64) {
	if OutOfChina(gcjLat, gcjLng) {
		return gcjLat, gcjLng
	}
	x, y := gcjLng, gcjLat
	z := math.Hypot(x, y) + 0.00002*math.Sin(y*xPi)
	theta := math.Atan2(y, x) + 0.000003*math.Cos(x*xPi)
	bdLng = z*math.Cos(theta) + 0.0065
	bdLat = z*math.Sin(theta) + 0.006
	return
}

// BD09ToGCJ02 converts a BD-09 coordinate to GCJ-02.
func BD09ToGCJ02(bdLat, bdLng float64) (gcjLat, gcjLng float64) {
	if OutOfChina(bdLat, bdLng) {
		return bdLat, bdLng
	}
	x, y := bdLng-0.0065, bdLat-0.006
	z := math.Hypot(x, y) - 0.00002*math.Sin(y*xPi)
	theta := math.Atan2(y, x) - 0.000003*math.Cos(x*xPi)
	gcjLng = z * math.Cos(theta)
	gcjLat = z * math.Sin(theta)
	return
}

// WGS84ToBD09 converts WGS-84 to BD-09 through GCJ-02.
func WGS84ToBD09(wgsLat, wgsLng float64) (bdLat, bdLng float64) {
	return GCJ02ToBD09(WGS84ToGCJ02(wgsLat, wgsLng))
}

// BD09ToWGS84 converts BD-09 to WGS-84 through GCJ-02, using the
// approximate GCJ-02 inverse.
func BD09ToWGS84(bdLat, bdLng float64) (wgsLat, wgsLng float64) {
	return GCJ02ToWGS84(BD09ToGCJ02(bdLat, bdLng))
}
