package coord

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// OrbToWGS84 returns an orb.Projection that maps points of p to WGS84.
func OrbToWGS84(p Projection) orb.Projection {
	return func(pt orb.Point) orb.Point {
		lon, lat := p.ToWGS84(pt[0], pt[1])
		return orb.Point{lon, lat}
	}
}

// OrbFromWGS84 returns an orb.Projection that maps WGS84 points into p.
func OrbFromWGS84(p Projection) orb.Projection {
	return func(pt orb.Point) orb.Point {
		x, y := p.FromWGS84(pt[0], pt[1])
		return orb.Point{x, y}
	}
}

// OrbReproject returns an orb.Projection from one projection to another.
func OrbReproject(from, to Projection) orb.Projection {
	return func(pt orb.Point) orb.Point {
		x, y := Reproject(from, to, pt[0], pt[1])
		return orb.Point{x, y}
	}
}

// ProjectGeometry reprojects every point of g. The input is modified in place
// by orb and also returned.
func ProjectGeometry(g orb.Geometry, from, to Projection) orb.Geometry {
	return project.Geometry(g, OrbReproject(from, to))
}
