// Package track loads GPS trajectory records, converts their coordinates
// between datums and writes them back out.
package track

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/pspoerri/eviltransform/internal/batch"
	"github.com/pspoerri/eviltransform/internal/coord"
)

// Record is one GPS fix of a driver serving an order. Lon/Lat hold the
// coordinates as loaded (GCJ-02 for ride-hailing exports); WGSLon/WGSLat are
// filled by Convert.
type Record struct {
	DriverID string
	OrderID  string
	Time     int64
	Lon      float64
	Lat      float64
	WGSLon   float64
	WGSLat   float64
}

// Key identifies a record across datasets.
type Key struct {
	DriverID string
	OrderID  string
	Time     int64
}

func (r Record) Key() Key { return Key{r.DriverID, r.OrderID, r.Time} }

// Point returns the loaded coordinate as an orb point (lon, lat).
func (r Record) Point() orb.Point { return orb.Point{r.Lon, r.Lat} }

// WGSPoint returns the converted coordinate as an orb point (lon, lat).
func (r Record) WGSPoint() orb.Point { return orb.Point{r.WGSLon, r.WGSLat} }

// Method selects the GCJ-02 inverse used by Convert.
type Method int

const (
	// MethodApprox subtracts the offset evaluated at the GCJ-02 point.
	MethodApprox Method = iota
	// MethodExact bisects to the configured tolerance.
	MethodExact
	// MethodNone copies the loaded coordinates (data already in WGS-84).
	MethodNone
	// MethodBD09 treats the loaded coordinates as BD-09.
	MethodBD09
)

// ParseMethod parses a method name: approx, exact, none or bd09.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approx", "":
		return MethodApprox, nil
	case "exact":
		return MethodExact, nil
	case "none":
		return MethodNone, nil
	case "bd09":
		return MethodBD09, nil
	default:
		return 0, errors.Errorf("unknown conversion method %q (supported: approx, exact, none, bd09)", s)
	}
}

func (m Method) String() string {
	switch m {
	case MethodApprox:
		return "approx"
	case MethodExact:
		return "exact"
	case MethodNone:
		return "none"
	case MethodBD09:
		return "bd09"
	default:
		return "unknown"
	}
}

// Convert fills WGSLon/WGSLat of every record from Lon/Lat. A nil mapper
// uses batch.Default.
func Convert(records []Record, method Method, m *batch.Mapper) error {
	if m == nil {
		m = batch.Default
	}
	lats := make([]float64, len(records))
	lngs := make([]float64, len(records))
	for i, r := range records {
		lats[i], lngs[i] = r.Lat, r.Lon
	}

	var (
		outLat, outLng []float64
		err            error
	)
	switch method {
	case MethodApprox:
		outLat, outLng, err = m.GCJ02ToWGS84(lats, lngs)
	case MethodExact:
		outLat, outLng, err = m.GCJ02ToWGS84Exact(lats, lngs)
	case MethodNone:
		outLat, outLng = lats, lngs
	case MethodBD09:
		outLat, outLng, err = m.BD09ToWGS84(lats, lngs)
	default:
		return errors.Errorf("unknown conversion method %d", method)
	}
	if err != nil {
		return errors.Wrapf(err, "convert %d records (%s)", len(records), method)
	}

	for i := range records {
		records[i].WGSLat, records[i].WGSLon = outLat[i], outLng[i]
	}
	return nil
}

// Filter returns the records of one driver and order whose time lies in
// [tStart, tEnd], in input order.
func Filter(records []Record, driverID, orderID string, tStart, tEnd int64) []Record {
	var out []Record
	for _, r := range records {
		if r.DriverID == driverID && r.OrderID == orderID && r.Time >= tStart && r.Time <= tEnd {
			out = append(out, r)
		}
	}
	return out
}

// InBox returns the records whose converted coordinate lies inside box.
func InBox(records []Record, box orb.Bound) []Record {
	var out []Record
	for _, r := range records {
		if box.Contains(r.WGSPoint()) {
			out = append(out, r)
		}
	}
	return out
}

// Bounds returns the bounding box of the converted coordinates.
func Bounds(records []Record) orb.Bound {
	if len(records) == 0 {
		return orb.Bound{}
	}
	b := records[0].WGSPoint().Bound()
	for _, r := range records[1:] {
		b = b.Extend(r.WGSPoint())
	}
	return b
}

// Distance returns the great-circle length in meters of the converted
// coordinates taken in order.
func Distance(records []Record) float64 {
	var total float64
	for i := 1; i < len(records); i++ {
		a, b := records[i-1], records[i]
		total += coord.Distance(a.WGSLat, a.WGSLon, b.WGSLat, b.WGSLon)
	}
	return total
}
