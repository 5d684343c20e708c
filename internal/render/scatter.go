// Package render draws converted track points onto raster images.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/paulmach/orb"

	"github.com/pspoerri/eviltransform/internal/coord"
)

// Default canvas settings.
const (
	DefaultWidth     = 1024
	DefaultHeight    = 1024
	DefaultPointSize = 1
)

// Options controls Scatter.
type Options struct {
	Bounds    orb.Bound  // view window in lon/lat; zero fits the data
	Mercator  bool       // Web Mercator y-axis instead of linear latitude
	PointSize int        // side of the square drawn per point, in pixels
	Color     color.RGBA // zero means opaque black
	Width     int
	Height    int
}

func (o Options) withDefaults(points []orb.Point) Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.PointSize <= 0 {
		o.PointSize = DefaultPointSize
	}
	if o.Color == (color.RGBA{}) {
		o.Color = color.RGBA{A: 255}
	}
	if o.Bounds.IsZero() {
		o.Bounds = fit(points)
	}
	return o
}

// fit returns the bounds of points, padded when they collapse to a line or
// a single point so the viewport stays non-degenerate.
func fit(points []orb.Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}
	}
	b := orb.MultiPoint(points).Bound()
	if b.Max[0]-b.Min[0] == 0 || b.Max[1]-b.Min[1] == 0 {
		b = b.Pad(1e-4)
	}
	return b
}

// Viewport maps lon/lat onto pixel coordinates of a canvas.
type Viewport struct {
	bounds         orb.Bound
	project        orb.Projection
	minX, maxY     float64
	scaleX, scaleY float64
	width, height  int
}

// NewViewport returns the viewport Scatter uses for points under opts.
func NewViewport(points []orb.Point, opts Options) *Viewport {
	opts = opts.withDefaults(points)
	project := func(p orb.Point) orb.Point { return p }
	if opts.Mercator {
		project = coord.OrbFromWGS84(&coord.WebMercatorProj{})
	}
	lo := project(opts.Bounds.Min)
	hi := project(opts.Bounds.Max)
	v := &Viewport{
		bounds:  opts.Bounds,
		project: project,
		minX:    lo[0],
		maxY:    hi[1],
		width:   opts.Width,
		height:  opts.Height,
	}
	if dx := hi[0] - lo[0]; dx > 0 {
		v.scaleX = float64(opts.Width-1) / dx
	}
	if dy := hi[1] - lo[1]; dy > 0 {
		v.scaleY = float64(opts.Height-1) / dy
	}
	return v
}

// Pixel returns the canvas pixel of p. ok is false when p lies outside the
// view window.
func (v *Viewport) Pixel(p orb.Point) (x, y int, ok bool) {
	if !v.bounds.Contains(p) {
		return 0, 0, false
	}
	q := v.project(p)
	x = int(math.Round((q[0] - v.minX) * v.scaleX))
	y = int(math.Round((v.maxY - q[1]) * v.scaleY))
	return x, y, true
}

// Scatter draws every point inside the view window as a square on a white
// canvas.
func Scatter(points []orb.Point, opts Options) *image.RGBA {
	opts = opts.withDefaults(points)
	v := NewViewport(points, opts)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	src := image.NewUniform(opts.Color)
	lo := (opts.PointSize - 1) / 2
	for _, p := range points {
		x, y, ok := v.Pixel(p)
		if !ok {
			continue
		}
		r := image.Rect(x-lo, y-lo, x-lo+opts.PointSize, y-lo+opts.PointSize)
		draw.Draw(img, r.Intersect(img.Bounds()), src, image.Point{}, draw.Over)
	}
	return img
}
