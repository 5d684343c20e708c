package coord

import "strings"

// Projection defines the interface for converting between a source datum and WGS84.
type Projection interface {
	// ToWGS84 converts source coordinates to WGS84 longitude/latitude (degrees).
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts WGS84 longitude/latitude (degrees) to source coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// Name returns the registry name of this projection.
	Name() string
}

// Registry names accepted by ForName.
const (
	NameWGS84       = "wgs84"
	NameGCJ02       = "gcj02"
	NameGCJ02Exact  = "gcj02-exact"
	NameBD09        = "bd09"
	NameWebMercator = "webmercator"
)

// ForName returns the Projection registered under name (case-insensitive).
// Returns nil if the name is not supported.
func ForName(name string) Projection {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameWGS84, "wgs-84", "epsg:4326":
		return &WGS84Identity{}
	case NameGCJ02, "gcj-02":
		return &GCJ02{}
	case NameGCJ02Exact:
		return &GCJ02{Exact: true}
	case NameBD09, "bd-09":
		return &BD09{}
	case NameWebMercator, "epsg:3857":
		return &WebMercatorProj{}
	default:
		return nil
	}
}

// Names lists the names ForName resolves, in display order.
func Names() []string {
	return []string{NameWGS84, NameGCJ02, NameGCJ02Exact, NameBD09, NameWebMercator}
}

// WGS84Identity is a no-op projection for data already in WGS84.
type WGS84Identity struct{}

func (w *WGS84Identity) ToWGS84(x, y float64) (lon, lat float64)   { return x, y }
func (w *WGS84Identity) FromWGS84(lon, lat float64) (x, y float64) { return lon, lat }
func (w *WGS84Identity) Name() string                              { return NameWGS84 }

// GCJ02 adapts the GCJ-02 transforms to the Projection interface.
// Exact selects the bisection inverse for ToWGS84; Tolerance and
// MaxIterations default to DefaultTolerance and DefaultMaxIterations.
type GCJ02 struct {
	Exact         bool
	Tolerance     float64
	MaxIterations int
}

func (g *GCJ02) ToWGS84(x, y float64) (lon, lat float64) {
	if !g.Exact {
		lat, lon = GCJ02ToWGS84(y, x)
		return
	}
	tol, iter := g.Tolerance, g.MaxIterations
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if iter <= 0 {
		iter = DefaultMaxIterations
	}
	lat, lon = GCJ02ToWGS84ExactWith(y, x, tol, iter)
	return
}

func (g *GCJ02) FromWGS84(lon, lat float64) (x, y float64) {
	y, x = WGS84ToGCJ02(lat, lon)
	return
}

func (g *GCJ02) Name() string {
	if g.Exact {
		return NameGCJ02Exact
	}
	return NameGCJ02
}

// BD09 adapts the Baidu BD-09 transforms to the Projection interface.
type BD09 struct{}

func (b *BD09) ToWGS84(x, y float64) (lon, lat float64) {
	lat, lon = BD09ToWGS84(y, x)
	return
}

func (b *BD09) FromWGS84(lon, lat float64) (x, y float64) {
	y, x = WGS84ToBD09(lat, lon)
	return
}

func (b *BD09) Name() string { return NameBD09 }

// Reproject converts (x, y) from one projection to another through WGS84.
func Reproject(from, to Projection, x, y float64) (float64, float64) {
	lon, lat := from.ToWGS84(x, y)
	return to.FromWGS84(lon, lat)
}
