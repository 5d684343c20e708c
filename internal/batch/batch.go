// Package batch applies the coord transforms element-wise over coordinate
// slices. Slices of length one broadcast to the length of the other operands.
// The i-th output is always the scalar function applied to the i-th input.
package batch

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/pspoerri/eviltransform/internal/coord"
)

// ErrLengthMismatch is returned when operand lengths are neither equal nor one.
var ErrLengthMismatch = errors.New("batch: operand length mismatch")

// DefaultChunkSize is the number of elements a worker processes per job.
const DefaultChunkSize = 4096

// Config holds batch processing configuration.
type Config struct {
	Concurrency   int     // workers; <= 0 uses runtime.NumCPU()
	ChunkSize     int     // elements per job; <= 0 uses DefaultChunkSize
	Tolerance     float64 // exact inverse tolerance; <= 0 uses coord.DefaultTolerance
	MaxIterations int     // exact inverse budget; <= 0 uses coord.DefaultMaxIterations
	Strict        bool    // reject invalid coordinates with coord.ErrInvalidCoordinate
	Verbose       bool    // progress bar on stderr when it is a terminal
	Label         string  // progress bar label
}

// Mapper runs element-wise transforms with a fixed configuration.
// A Mapper is safe for concurrent use.
type Mapper struct {
	cfg Config
}

// New returns a Mapper with defaults filled in.
func New(cfg Config) *Mapper {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = coord.DefaultTolerance
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = coord.DefaultMaxIterations
	}
	if cfg.Label == "" {
		cfg.Label = "Transform"
	}
	return &Mapper{cfg: cfg}
}

// Config returns the effective configuration.
func (m *Mapper) Config() Config { return m.cfg }

// Default is the Mapper used by the package-level functions.
var Default = New(Config{})

// broadcastLen returns the common length of the operands. Length-one
// operands stretch to match; any other disagreement is an error.
func broadcastLen(lens ...int) (int, error) {
	n := -1
	for _, l := range lens {
		if l == 1 {
			continue
		}
		if n >= 0 && l != n {
			return 0, errors.Wrapf(ErrLengthMismatch, "lengths %v", lens)
		}
		n = l
	}
	if n < 0 {
		return 1, nil
	}
	return n, nil
}

func at(s []float64, i int) float64 {
	if len(s) == 1 {
		return s[0]
	}
	return s[i]
}

// chunk is a half-open index range handed to a worker.
type chunk struct {
	lo, hi int
}

// run calls fn over [0, n) split into chunks, on up to cfg.Concurrency workers.
func (m *Mapper) run(n int, fn func(lo, hi int)) {
	if n == 0 {
		return
	}
	size := m.cfg.ChunkSize
	numChunks := (n + size - 1) / size
	nWorkers := m.cfg.Concurrency
	if nWorkers > numChunks {
		nWorkers = numChunks
	}

	var pb *progressBar
	if m.cfg.Verbose && stderrIsTerminal() {
		pb = newProgressBar(m.cfg.Label, int64(n))
		defer pb.Finish()
	}

	if nWorkers <= 1 {
		for lo := 0; lo < n; lo += size {
			hi := min(lo+size, n)
			fn(lo, hi)
			pb.Add(int64(hi - lo))
		}
		return
	}

	jobs := make(chan chunk, nWorkers*2)
	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				fn(c.lo, c.hi)
				pb.Add(int64(c.hi - c.lo))
			}
		}()
	}
	for lo := 0; lo < n; lo += size {
		jobs <- chunk{lo: lo, hi: min(lo+size, n)}
	}
	close(jobs)
	wg.Wait()
}

// validate checks every broadcast coordinate pair when Strict is set.
func (m *Mapper) validate(n int, lats, lngs []float64) error {
	if !m.cfg.Strict {
		return nil
	}
	for i := 0; i < n; i++ {
		if err := coord.Validate(at(lats, i), at(lngs, i)); err != nil {
			return errors.Wrapf(err, "index %d", i)
		}
	}
	return nil
}

// Pair maps a scalar (a, b) -> (c, d) function over two operands.
func (m *Mapper) Pair(as, bs []float64, fn func(a, b float64) (float64, float64)) ([]float64, []float64, error) {
	n, err := broadcastLen(len(as), len(bs))
	if err != nil {
		return nil, nil, err
	}
	if err := m.validate(n, as, bs); err != nil {
		return nil, nil, err
	}
	outA := make([]float64, n)
	outB := make([]float64, n)
	m.run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			outA[i], outB[i] = fn(at(as, i), at(bs, i))
		}
	})
	return outA, outB, nil
}

// OutOfChina classifies each coordinate.
func (m *Mapper) OutOfChina(lats, lngs []float64) ([]bool, error) {
	n, err := broadcastLen(len(lats), len(lngs))
	if err != nil {
		return nil, err
	}
	if err := m.validate(n, lats, lngs); err != nil {
		return nil, err
	}
	out := make([]bool, n)
	m.run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = coord.OutOfChina(at(lats, i), at(lngs, i))
		}
	})
	return out, nil
}

// Transform evaluates the distortion kernel. xs and ys are offsets, not
// coordinates, so Strict does not apply.
func (m *Mapper) Transform(xs, ys []float64) (lats, lngs []float64, err error) {
	lenient := *m
	lenient.cfg.Strict = false
	return lenient.Pair(xs, ys, coord.Transform)
}

// Delta returns the GCJ-02 offset at each coordinate.
func (m *Mapper) Delta(lats, lngs []float64) ([]float64, []float64, error) {
	return m.Pair(lats, lngs, coord.Delta)
}

// WGS84ToGCJ02 converts WGS-84 coordinates to GCJ-02.
func (m *Mapper) WGS84ToGCJ02(lats, lngs []float64) ([]float64, []float64, error) {
	return m.Pair(lats, lngs, coord.WGS84ToGCJ02)
}

// GCJ02ToWGS84 converts GCJ-02 coordinates to WGS-84 with the approximate inverse.
func (m *Mapper) GCJ02ToWGS84(lats, lngs []float64) ([]float64, []float64, error) {
	return m.Pair(lats, lngs, coord.GCJ02ToWGS84)
}

// GCJ02ToWGS84Exact converts GCJ-02 coordinates to WGS-84 with the bisection
// inverse, using the Mapper's tolerance and iteration budget.
func (m *Mapper) GCJ02ToWGS84Exact(lats, lngs []float64) ([]float64, []float64, error) {
	tol, iter := m.cfg.Tolerance, m.cfg.MaxIterations
	return m.Pair(lats, lngs, func(lat, lng float64) (float64, float64) {
		return coord.GCJ02ToWGS84ExactWith(lat, lng, tol, iter)
	})
}

// WGS84ToBD09 converts WGS-84 coordinates to BD-09.
func (m *Mapper) WGS84ToBD09(lats, lngs []float64) ([]float64, []float64, error) {
	return m.Pair(lats, lngs, coord.WGS84ToBD09)
}

// BD09ToWGS84 converts BD-09 coordinates to WGS-84.
func (m *Mapper) BD09ToWGS84(lats, lngs []float64) ([]float64, []float64, error) {
	return m.Pair(lats, lngs, coord.BD09ToWGS84)
}

// GCJ02ToBD09 converts GCJ-02 coordinates to BD-09.
func (m *Mapper) GCJ02ToBD09(lats, lngs []float64) ([]float64, []float64, error) {
	return m.Pair(lats, lngs, coord.GCJ02ToBD09)
}

// BD09ToGCJ02 converts BD-09 coordinates to GCJ-02.
func (m *Mapper) BD09ToGCJ02(lats, lngs []float64) ([]float64, []float64, error) {
	return m.Pair(lats, lngs, coord.BD09ToGCJ02)
}

// Reproject converts (x, y) pairs from one projection to another. Operands
// follow the Projection (x=lon, y=lat) order.
func (m *Mapper) Reproject(from, to coord.Projection, xs, ys []float64) ([]float64, []float64, error) {
	if from == nil || to == nil {
		return nil, nil, errors.New("batch: nil projection")
	}
	n, err := broadcastLen(len(xs), len(ys))
	if err != nil {
		return nil, nil, err
	}
	// Validate in (lat, lng) order.
	if err := m.validate(n, ys, xs); err != nil {
		return nil, nil, err
	}
	outX := make([]float64, n)
	outY := make([]float64, n)
	m.run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			outX[i], outY[i] = coord.Reproject(from, to, at(xs, i), at(ys, i))
		}
	})
	return outX, outY, nil
}

// Distance returns the great-circle distance in meters for each pair of points.
func (m *Mapper) Distance(latsA, lngsA, latsB, lngsB []float64) ([]float64, error) {
	n, err := broadcastLen(len(latsA), len(lngsA), len(latsB), len(lngsB))
	if err != nil {
		return nil, err
	}
	if err := m.validate(n, latsA, lngsA); err != nil {
		return nil, err
	}
	if err := m.validate(n, latsB, lngsB); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	m.run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = coord.Distance(at(latsA, i), at(lngsA, i), at(latsB, i), at(lngsB, i))
		}
	})
	return out, nil
}
