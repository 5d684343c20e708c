package batch

import "github.com/pspoerri/eviltransform/internal/coord"

// Package-level forms of the Mapper methods, run on Default.

func OutOfChina(lats, lngs []float64) ([]bool, error) { return Default.OutOfChina(lats, lngs) }

func Transform(xs, ys []float64) ([]float64, []float64, error) { return Default.Transform(xs, ys) }

func Delta(lats, lngs []float64) ([]float64, []float64, error) { return Default.Delta(lats, lngs) }

func WGS84ToGCJ02(lats, lngs []float64) ([]float64, []float64, error) {
	return Default.WGS84ToGCJ02(lats, lngs)
}

func GCJ02ToWGS84(lats, lngs []float64) ([]float64, []float64, error) {
	return Default.GCJ02ToWGS84(lats, lngs)
}

func GCJ02ToWGS84Exact(lats, lngs []float64) ([]float64, []float64, error) {
	return Default.GCJ02ToWGS84Exact(lats, lngs)
}

func WGS84ToBD09(lats, lngs []float64) ([]float64, []float64, error) {
	return Default.WGS84ToBD09(lats, lngs)
}

func BD09ToWGS84(lats, lngs []float64) ([]float64, []float64, error) {
	return Default.BD09ToWGS84(lats, lngs)
}

func GCJ02ToBD09(lats, lngs []float64) ([]float64, []float64, error) {
	return Default.GCJ02ToBD09(lats, lngs)
}

func BD09ToGCJ02(lats, lngs []float64) ([]float64, []float64, error) {
	return Default.BD09ToGCJ02(lats, lngs)
}

func Distance(latsA, lngsA, latsB, lngsB []float64) ([]float64, error) {
	return Default.Distance(latsA, lngsA, latsB, lngsB)
}

func Reproject(from, to coord.Projection, xs, ys []float64) ([]float64, []float64, error) {
	return Default.Reproject(from, to, xs, ys)
}
