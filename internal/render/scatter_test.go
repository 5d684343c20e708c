package render

import (
	"image/color"
	"testing"

	"github.com/paulmach/orb"
)

var white = color.RGBA{255, 255, 255, 255}

func TestScatter_Dimensions(t *testing.T) {
	img := Scatter(nil, Options{Width: 64, Height: 32})
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("bounds = %v, want 64x32", b)
	}
	if got := img.RGBAAt(10, 10); got != white {
		t.Errorf("empty canvas pixel = %v, want white", got)
	}

	img = Scatter(nil, Options{})
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Errorf("default bounds = %v", b)
	}
}

func TestScatter_Corners(t *testing.T) {
	points := []orb.Point{{108.0, 34.0}, {109.0, 35.0}}
	img := Scatter(points, Options{Width: 11, Height: 11})

	black := color.RGBA{A: 255}
	// Minimum lon/lat is bottom-left, maximum is top-right.
	if got := img.RGBAAt(0, 10); got != black {
		t.Errorf("bottom-left = %v, want black", got)
	}
	if got := img.RGBAAt(10, 0); got != black {
		t.Errorf("top-right = %v, want black", got)
	}
	if got := img.RGBAAt(5, 5); got != white {
		t.Errorf("centre = %v, want white", got)
	}
}

func TestScatter_BoundsClip(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	opts := Options{
		Bounds:    orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}},
		Width:     11,
		Height:    11,
		Color:     red,
		PointSize: 3,
	}
	img := Scatter([]orb.Point{{5, 5}, {20, 20}}, opts)

	for y := 4; y <= 6; y++ {
		for x := 4; x <= 6; x++ {
			if got := img.RGBAAt(x, y); got != red {
				t.Errorf("pixel (%d, %d) = %v, want red", x, y, got)
			}
		}
	}
	if got := img.RGBAAt(3, 5); got != white {
		t.Errorf("pixel outside square = %v, want white", got)
	}

	coloured := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+1] == 0 {
			coloured++
		}
	}
	if coloured != 9 {
		t.Errorf("got %d coloured pixels, want 9 (out-of-window point must be skipped)", coloured)
	}
}

func TestViewport_Mercator(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 60}}
	linear := NewViewport(nil, Options{Bounds: bounds, Width: 101, Height: 101})
	merc := NewViewport(nil, Options{Bounds: bounds, Width: 101, Height: 101, Mercator: true})

	p := orb.Point{5, 30}
	_, ly, ok := linear.Pixel(p)
	if !ok {
		t.Fatal("point should be inside")
	}
	_, my, _ := merc.Pixel(p)
	if ly != 50 {
		t.Errorf("linear y = %d, want 50", ly)
	}
	// Mercator stretches high latitudes, pushing mid-range points down.
	if my <= ly {
		t.Errorf("mercator y = %d, want below linear y %d", my, ly)
	}

	if _, _, ok := merc.Pixel(orb.Point{11, 30}); ok {
		t.Error("point east of window reported inside")
	}
}

func TestFit_SinglePoint(t *testing.T) {
	b := fit([]orb.Point{{108, 34}})
	if b.Max[0] <= b.Min[0] || b.Max[1] <= b.Min[1] {
		t.Errorf("fit of single point is degenerate: %v", b)
	}
	img := Scatter([]orb.Point{{108, 34}}, Options{Width: 9, Height: 9})
	if got := img.RGBAAt(4, 4); got != (color.RGBA{A: 255}) {
		t.Errorf("single point not drawn at centre: %v", got)
	}
}
