package coord

import (
	"math"
	"testing"
)

// WGS84 reference points inside the GCJ-02 envelope.
var cityPoints = []struct {
	name     string
	lat, lng float64
}{
	{"Beijing", 39.9087, 116.3975},
	{"Shanghai", 31.2304, 121.4737},
	{"Shenzhen", 22.5431, 114.0579},
	{"Xi'an", 34.2397, 108.9423},
	{"Harbin", 45.75, 126.63},
	{"Chongqing", 29.56, 106.55},
}

func TestOutOfChina(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"greenwich", 60.0, 0.0, true},
		{"xian", 34.0, 108.0, false},
		{"min corner inclusive", 0.8293, 72.004, false},
		{"max corner inclusive", 55.8271, 137.8347, false},
		{"west of envelope", 34.0, 72.0039, true},
		{"east of envelope", 34.0, 137.8348, true},
		{"south of envelope", 0.8292, 108.0, true},
		{"north of envelope", 55.8272, 108.0, true},
		{"tokyo inside box", 35.6895, 139.6917, true},
		{"nan", math.NaN(), 108.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutOfChina(tt.lat, tt.lng); got != tt.want {
				t.Errorf("OutOfChina(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestTransform_Origin(t *testing.T) {
	// At the reference point every sine term vanishes.
	lat, lng := Transform(0, 0)
	if lat != -100 || lng != 300 {
		t.Errorf("Transform(0, 0) = (%v, %v), want (-100, 300)", lat, lng)
	}
}

func TestTransform_Golden(t *testing.T) {
	lat, lng := Transform(3.0, -1.0)
	if math.Abs(lat-(-169.75437091410623)) > 1e-9 {
		t.Errorf("Transform(3, -1) lat = %.14f, want -169.75437091410623", lat)
	}
	if math.Abs(lng-434.287282074401) > 1e-9 {
		t.Errorf("Transform(3, -1) lng = %.14f, want 434.287282074401", lng)
	}
}

func TestDelta_Golden(t *testing.T) {
	dLat, dLng := Delta(34.0, 108.0)
	if math.Abs(dLat-(-0.0015303879562750652)) > 1e-12 {
		t.Errorf("Delta(34, 108) dLat = %.17f, want -0.0015303879562750652", dLat)
	}
	if math.Abs(dLng-0.00470085352352995) > 1e-12 {
		t.Errorf("Delta(34, 108) dLng = %.17f, want 0.00470085352352995", dLng)
	}
}

func TestDelta_Deterministic(t *testing.T) {
	for _, p := range cityPoints {
		a1, b1 := Delta(p.lat, p.lng)
		a2, b2 := Delta(p.lat, p.lng)
		if a1 != a2 || b1 != b2 {
			t.Errorf("%s: Delta not deterministic: (%v, %v) vs (%v, %v)", p.name, a1, b1, a2, b2)
		}
	}
}

func TestWGS84ToGCJ02_Golden(t *testing.T) {
	lat, lng := WGS84ToGCJ02(34.0, 108.0)
	if math.Abs(lat-33.99846961204373) > 1e-12 {
		t.Errorf("WGS84ToGCJ02(34, 108) lat = %.14f, want 33.99846961204373", lat)
	}
	if math.Abs(lng-108.00470085352353) > 1e-12 {
		t.Errorf("WGS84ToGCJ02(34, 108) lng = %.14f, want 108.00470085352353", lng)
	}

	dLat, dLng := Delta(34.0, 108.0)
	if lat != 34.0+dLat || lng != 108.0+dLng {
		t.Errorf("WGS84ToGCJ02(34, 108) = (%v, %v), want input + Delta = (%v, %v)",
			lat, lng, 34.0+dLat, 108.0+dLng)
	}
}

func TestIdentityOutsideChina(t *testing.T) {
	points := [][2]float64{
		{60.0, 0.0},
		{47.3769, 8.5417},
		{-33.8688, 151.2093},
		{40.7128, -74.0060},
		{35.6895, 139.6917},
	}
	for _, p := range points {
		lat, lng := p[0], p[1]
		if gLat, gLng := WGS84ToGCJ02(lat, lng); gLat != lat || gLng != lng {
			t.Errorf("WGS84ToGCJ02(%v, %v) = (%v, %v), want identity", lat, lng, gLat, gLng)
		}
		if wLat, wLng := GCJ02ToWGS84(lat, lng); wLat != lat || wLng != lng {
			t.Errorf("GCJ02ToWGS84(%v, %v) = (%v, %v), want identity", lat, lng, wLat, wLng)
		}
		if wLat, wLng := GCJ02ToWGS84Exact(lat, lng); math.Abs(wLat-lat) > DefaultTolerance || math.Abs(wLng-lng) > DefaultTolerance {
			t.Errorf("GCJ02ToWGS84Exact(%v, %v) = (%v, %v), want ~identity", lat, lng, wLat, wLng)
		}
	}
}

func TestGCJ02ToWGS84_ApproximateRoundTrip(t *testing.T) {
	for _, p := range cityPoints {
		t.Run(p.name, func(t *testing.T) {
			gLat, gLng := WGS84ToGCJ02(p.lat, p.lng)
			wLat, wLng := GCJ02ToWGS84(gLat, gLng)
			// Delta is evaluated at the shifted point, leaving a ~1m residual.
			tol := 5e-5
			if d := math.Abs(wLat - p.lat); d > tol {
				t.Errorf("lat residual %.2e > %.0e", d, tol)
			}
			if d := math.Abs(wLng - p.lng); d > tol {
				t.Errorf("lng residual %.2e > %.0e", d, tol)
			}
		})
	}
}

func TestGCJ02ToWGS84Exact_RoundTrip(t *testing.T) {
	for _, p := range cityPoints {
		t.Run(p.name, func(t *testing.T) {
			gLat, gLng := WGS84ToGCJ02(p.lat, p.lng)
			wLat, wLng := GCJ02ToWGS84Exact(gLat, gLng)

			tol := 2 * DefaultTolerance
			if d := math.Abs(wLat - p.lat); d > tol {
				t.Errorf("lat error %.2e > %.0e", d, tol)
			}
			if d := math.Abs(wLng - p.lng); d > tol {
				t.Errorf("lng error %.2e > %.0e", d, tol)
			}

			// Re-applying the forward transform reproduces the input.
			rLat, rLng := WGS84ToGCJ02(wLat, wLng)
			if d := math.Abs(rLat - gLat); d >= DefaultTolerance {
				t.Errorf("lat residual %.2e >= tolerance", d)
			}
			if d := math.Abs(rLng - gLng); d >= DefaultTolerance {
				t.Errorf("lng residual %.2e >= tolerance", d)
			}
		})
	}
}

func TestGCJ02ToWGS84Exact_BetterThanApproximate(t *testing.T) {
	for _, p := range cityPoints {
		gLat, gLng := WGS84ToGCJ02(p.lat, p.lng)
		aLat, aLng := GCJ02ToWGS84(gLat, gLng)
		eLat, eLng := GCJ02ToWGS84Exact(gLat, gLng)
		approxErr := math.Hypot(aLat-p.lat, aLng-p.lng)
		exactErr := math.Hypot(eLat-p.lat, eLng-p.lng)
		if exactErr > approxErr && exactErr > DefaultTolerance {
			t.Errorf("%s: exact error %.2e worse than approximate %.2e", p.name, exactErr, approxErr)
		}
	}
}

func TestGCJ02ToWGS84ExactWith_IterationBudget(t *testing.T) {
	gLat, gLng := WGS84ToGCJ02(34.0, 108.0)

	// No iterations: the bracket centre, i.e. the input, comes back.
	lat, lng := GCJ02ToWGS84ExactWith(gLat, gLng, DefaultTolerance, 0)
	if lat != gLat || lng != gLng {
		t.Errorf("zero iterations = (%v, %v), want input (%v, %v)", lat, lng, gLat, gLng)
	}

	// An unreachable tolerance exhausts the budget and still returns a
	// point close to the answer.
	lat, lng = GCJ02ToWGS84ExactWith(gLat, gLng, 0, DefaultMaxIterations)
	if math.Abs(lat-34.0) > 1e-6 || math.Abs(lng-108.0) > 1e-6 {
		t.Errorf("exhausted budget = (%v, %v), want ~(34, 108)", lat, lng)
	}

	// A loose tolerance stops early on the first midpoint.
	lat, lng = GCJ02ToWGS84ExactWith(gLat, gLng, 1, DefaultMaxIterations)
	if math.Abs(lat-gLat) > 1e-12 || math.Abs(lng-gLng) > 1e-12 {
		t.Errorf("loose tolerance = (%v, %v), want first midpoint (%v, %v)", lat, lng, gLat, gLng)
	}
}

func TestNaNPropagates(t *testing.T) {
	nan := math.NaN()
	lat, lng := WGS84ToGCJ02(nan, 108.0)
	if !math.IsNaN(lat) || lng != 108.0 {
		t.Errorf("WGS84ToGCJ02(NaN, 108) = (%v, %v), want (NaN, 108)", lat, lng)
	}
	dLat, dLng := Delta(nan, nan)
	if !math.IsNaN(dLat) || !math.IsNaN(dLng) {
		t.Errorf("Delta(NaN, NaN) = (%v, %v), want NaN", dLat, dLng)
	}
}

func BenchmarkWGS84ToGCJ02(b *testing.B) {
	for i := 0; i < b.N; i++ {
		WGS84ToGCJ02(34.2397, 108.9423)
	}
}

func BenchmarkGCJ02ToWGS84Exact(b *testing.B) {
	gLat, gLng := WGS84ToGCJ02(34.2397, 108.9423)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GCJ02ToWGS84Exact(gLat, gLng)
	}
}
