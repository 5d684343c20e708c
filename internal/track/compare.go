package track

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/pspoerri/eviltransform/internal/coord"
)

// ErrEmptySelection is returned by Compare when no record of the first
// dataset falls inside its box.
var ErrEmptySelection = errors.New("no records inside comparison box")

// Mismatch describes a record of the first dataset that has no identical
// counterpart in the second.
type Mismatch struct {
	Record Record
	Other  *Record // nil when the key is missing from the second dataset
}

func (m Mismatch) String() string {
	k := m.Record.Key()
	if m.Other == nil {
		return fmt.Sprintf("driver=%s order=%s time=%d: missing", k.DriverID, k.OrderID, k.Time)
	}
	return fmt.Sprintf("driver=%s order=%s time=%d: (%v, %v) != (%v, %v)",
		k.DriverID, k.OrderID, k.Time,
		m.Record.WGSLat, m.Record.WGSLon, m.Other.WGSLat, m.Other.WGSLon)
}

// Compare checks that every record of a whose converted coordinate is inside
// boxA has a record with the same key inside boxB in b, with bit-identical
// converted coordinates. boxB is usually slightly larger than boxA so that
// small conversion differences still select the same fixes.
func Compare(a, b []Record, boxA, boxB orb.Bound) ([]Mismatch, error) {
	selA := InBox(a, boxA)
	if len(selA) == 0 {
		return nil, ErrEmptySelection
	}

	index := make(map[Key]Record, len(b))
	for _, r := range InBox(b, boxB) {
		index[r.Key()] = r
	}

	var out []Mismatch
	for _, r := range selA {
		other, ok := index[r.Key()]
		if !ok {
			out = append(out, Mismatch{Record: r})
			continue
		}
		if other.WGSLat != r.WGSLat || other.WGSLon != r.WGSLon {
			o := other
			out = append(out, Mismatch{Record: r, Other: &o})
		}
	}
	return out, nil
}

// Track is the time-ordered path of one driver serving one order.
type Track struct {
	DriverID string
	OrderID  string
	Times    []int64
	Line     orb.LineString
}

// Tracks groups records by driver and order. Tracks are returned in order of
// first appearance; points within a track are sorted by time. wgs selects
// the converted coordinates instead of the loaded ones.
func Tracks(records []Record, wgs bool) []Track {
	type trackKey struct{ driver, order string }
	idx := make(map[trackKey]int)
	var groups [][]Record
	var keys []trackKey

	for _, r := range records {
		k := trackKey{r.DriverID, r.OrderID}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, nil)
			keys = append(keys, k)
		}
		groups[i] = append(groups[i], r)
	}

	out := make([]Track, len(groups))
	for i, g := range groups {
		sort.SliceStable(g, func(a, b int) bool { return g[a].Time < g[b].Time })
		t := Track{
			DriverID: keys[i].driver,
			OrderID:  keys[i].order,
			Times:    make([]int64, len(g)),
			Line:     make(orb.LineString, len(g)),
		}
		for j, r := range g {
			t.Times[j] = r.Time
			if wgs {
				t.Line[j] = r.WGSPoint()
			} else {
				t.Line[j] = r.Point()
			}
		}
		out[i] = t
	}
	return out
}

// Length returns the great-circle length of the track in meters.
func (t Track) Length() float64 {
	var total float64
	for i := 1; i < len(t.Line); i++ {
		a, b := t.Line[i-1], t.Line[i]
		total += coord.Distance(a[1], a[0], b[1], b[0])
	}
	return total
}
