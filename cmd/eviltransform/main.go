package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/pspoerri/eviltransform/internal/batch"
	"github.com/pspoerri/eviltransform/internal/config"
	"github.com/pspoerri/eviltransform/internal/encode"
	"github.com/pspoerri/eviltransform/internal/render"
	"github.com/pspoerri/eviltransform/internal/track"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		configPath  string
		method      string
		exact       bool
		from        string
		limit       int
		concurrency int
		verbose     bool
		strict      bool
		plotPath    string
		bbox        string
		mercator    bool
		compare     string
		driverID    string
		orderID     string
		tStart      int64
		tEnd        int64
		showVersion bool
		cpuProfile  string
		memProfile  string
	)

	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&method, "method", "approx", "GCJ-02 inverse: approx, exact")
	flag.BoolVar(&exact, "exact", false, "Shorthand for -method exact")
	flag.StringVar(&from, "from", "gcj02", "Datum of the input coordinates: gcj02, bd09, wgs84")
	flag.IntVar(&limit, "limit", track.DefaultLimit, "Maximum rows to load (0 = all)")
	flag.IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Number of parallel workers")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&strict, "strict", false, "Fail on NaN or out-of-range coordinates")
	flag.StringVar(&plotPath, "plot", "", "Render converted points to an image (.png, .jpg, .webp)")
	flag.StringVar(&bbox, "bbox", "", "Plot and compare window: minLon,minLat,maxLon,maxLat")
	flag.BoolVar(&mercator, "mercator", false, "Plot with a Web Mercator y-axis")
	flag.StringVar(&compare, "compare", "", "Also convert with this method and report fixes inside -bbox that differ")
	flag.StringVar(&driverID, "driver", "", "Keep only this driver (requires -order)")
	flag.StringVar(&orderID, "order", "", "Keep only this order (requires -driver)")
	flag.Int64Var(&tStart, "tstart", 0, "Start of the time window (unix seconds, with -driver)")
	flag.Int64Var(&tEnd, "tend", 1<<62, "End of the time window (unix seconds, with -driver)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	flag.StringVar(&memProfile, "memprofile", "", "Write memory profile to file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eviltransform [flags] <input.csv> <output.csv|output.shp>\n\n")
		fmt.Fprintf(os.Stderr, "Convert GPS trajectories recorded in GCJ-02 (or BD-09) to WGS-84.\n")
		fmt.Fprintf(os.Stderr, "Input rows are driver_id,order_id,time,lon,lat without a header.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("eviltransform %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// CPU profiling.
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatalf("Creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	// Memory profile (written at exit).
	if memProfile != "" {
		defer func() {
			f, err := os.Create(memProfile)
			if err != nil {
				log.Fatalf("Creating memory profile: %v", err)
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatalf("Writing memory profile: %v", err)
			}
		}()
	}

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := args[0]
	outputPath := args[1]
	if inputPath == outputPath {
		log.Fatal("Input and output paths must be different")
	}
	outExt := strings.ToLower(filepath.Ext(outputPath))
	if outExt != ".csv" && outExt != ".shp" {
		log.Fatal("Output file must have .csv or .shp extension")
	}
	if (driverID == "") != (orderID == "") {
		log.Fatal("-driver and -order must be given together")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	// Explicit flags override the configuration.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["method"] {
		cfg.Transform.Method = method
	}
	if exact {
		cfg.Transform.Method = "exact"
	}
	if set["limit"] {
		cfg.Transform.Limit = limit
	}
	if set["concurrency"] {
		cfg.Batch.Concurrency = concurrency
	}
	if set["verbose"] {
		cfg.Batch.Verbose = verbose
	}
	if set["strict"] {
		cfg.Batch.Strict = strict
	}
	if set["mercator"] {
		cfg.Plot.Mercator = mercator
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config: %v", err)
	}

	conv, err := resolveMethod(from, cfg.Method())
	if err != nil {
		log.Fatalf("Method: %v", err)
	}

	var window orb.Bound
	if bbox != "" {
		window, err = parseBbox(bbox)
		if err != nil {
			log.Fatalf("Bounding box: %v", err)
		}
	}

	var enc encode.Encoder
	if plotPath != "" {
		enc, err = plotEncoder(plotPath, cfg.Plot)
		if err != nil {
			log.Fatalf("Plot encoder: %v", err)
		}
	}

	fmt.Printf("eviltransform %s (commit %s, built %s)\n", version, commit, buildDate)
	fmt.Printf("  %-14s %s\n", "From:", from)
	fmt.Printf("  %-14s %s\n", "Method:", conv)
	if conv == track.MethodExact {
		fmt.Printf("  %-14s %g° / %d iterations\n", "Tolerance:", cfg.Transform.Tolerance, cfg.Transform.MaxIterations)
	}
	fmt.Printf("  %-14s %d\n", "Concurrency:", cfg.Batch.Concurrency)
	fmt.Printf("  %-14s %s\n", "Input:", inputPath)
	fmt.Printf("  %-14s %s\n", "Output:", outputPath)
	if plotPath != "" {
		fmt.Printf("  %-14s %s (%dx%d)\n", "Plot:", plotPath, cfg.Plot.Width, cfg.Plot.Height)
	}

	start := time.Now()
	records, err := track.Load(inputPath, cfg.Transform.Limit)
	if err != nil {
		log.Fatalf("Loading input: %v", err)
	}
	if driverID != "" {
		records = track.Filter(records, driverID, orderID, tStart, tEnd)
	}
	if cfg.Batch.Verbose {
		log.Printf("Loaded %d records in %v", len(records), time.Since(start).Round(time.Millisecond))
	}

	bc := cfg.BatchConfig()
	bc.Label = "Convert"
	mapper := batch.New(bc)

	convStart := time.Now()
	if err := track.Convert(records, conv, mapper); err != nil {
		log.Fatalf("Convert: %v", err)
	}
	if cfg.Batch.Verbose {
		log.Printf("Converted %d records in %v", len(records), time.Since(convStart).Round(time.Millisecond))
		tracks := track.Tracks(records, true)
		var meters float64
		for _, t := range tracks {
			meters += t.Length()
		}
		log.Printf("%d tracks, %.1f km total", len(tracks), meters/1000)
	}

	switch outExt {
	case ".shp":
		err = track.WriteShapefile(outputPath, records)
	default:
		err = track.WriteCSVFile(outputPath, records)
	}
	if err != nil {
		log.Fatalf("Writing output: %v", err)
	}

	if compare != "" {
		if err := runCompare(records, from, compare, window, mapper); err != nil {
			log.Fatalf("Compare: %v", err)
		}
	}

	if enc != nil {
		points := make([]orb.Point, len(records))
		for i, r := range records {
			points[i] = r.WGSPoint()
		}
		img := render.Scatter(points, render.Options{
			Bounds:    window,
			Mercator:  cfg.Plot.Mercator,
			PointSize: cfg.Plot.PointSize,
			Width:     cfg.Plot.Width,
			Height:    cfg.Plot.Height,
		})
		data, err := enc.Encode(img)
		if err != nil {
			log.Fatalf("Encoding plot: %v", err)
		}
		if err := os.WriteFile(plotPath, data, 0o644); err != nil {
			log.Fatalf("Writing plot: %v", err)
		}
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	fmt.Printf("Done: %d records, %v → %s\n", len(records), elapsed, outputPath)
}

// resolveMethod combines the input datum and the GCJ-02 inverse.
func resolveMethod(from string, m track.Method) (track.Method, error) {
	switch strings.ToLower(from) {
	case "gcj02", "gcj-02":
		return m, nil
	case "bd09", "bd-09":
		return track.MethodBD09, nil
	case "wgs84", "wgs-84":
		return track.MethodNone, nil
	default:
		return 0, fmt.Errorf("unsupported input datum %q (supported: gcj02, bd09, wgs84)", from)
	}
}

// runCompare converts a copy of records with the alternate method and logs
// every fix inside window whose result differs.
func runCompare(records []track.Record, from, other string, window orb.Bound, m *batch.Mapper) error {
	om, err := track.ParseMethod(other)
	if err != nil {
		return err
	}
	om, err = resolveMethod(from, om)
	if err != nil {
		return err
	}
	alt := make([]track.Record, len(records))
	copy(alt, records)
	if err := track.Convert(alt, om, m); err != nil {
		return err
	}
	if window.IsZero() {
		window = track.Bounds(records)
	}
	mismatches, err := track.Compare(records, alt, window, window.Pad(1e-3))
	if err != nil {
		return err
	}
	for _, mm := range mismatches {
		log.Printf("Differs: %s", mm)
	}
	fmt.Printf("Compare: %d of %d fixes differ (%s)\n", len(mismatches), len(track.InBox(records, window)), om)
	return nil
}

func plotEncoder(path string, plot config.Plot) (encode.Encoder, error) {
	if filepath.Ext(path) == "" {
		return encode.NewEncoder(plot.Format, plot.Quality)
	}
	return encode.ForPath(path, plot.Quality)
}

// parseBbox parses "minLon,minLat,maxLon,maxLat".
func parseBbox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("expected minLon,minLat,maxLon,maxLat, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid bbox component %q", p)
		}
		v[i] = f
	}
	if v[0] >= v[2] || v[1] >= v[3] {
		return orb.Bound{}, fmt.Errorf("bbox minimum must be below maximum, got %q", s)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}
