package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/pspoerri/eviltransform/internal/coord"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: gcjinfo <lat> <lng>\n")
		os.Exit(1)
	}

	lat, err := strconv.ParseFloat(os.Args[1], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid latitude %q\n", os.Args[1])
		os.Exit(1)
	}
	lng, err := strconv.ParseFloat(os.Args[2], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid longitude %q\n", os.Args[2])
		os.Exit(1)
	}
	if err := coord.Validate(lat, lng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Point: %.8f, %.8f\n", lat, lng)
	if coord.OutOfChina(lat, lng) {
		fmt.Printf("Region: outside China, GCJ-02 and BD-09 offsets do not apply\n")
		return
	}
	fmt.Printf("Region: inside China envelope\n")

	dLat, dLng := coord.Delta(lat, lng)
	fmt.Printf("Delta: dlat=%.10f dlng=%.10f (%.2f m)\n", dLat, dLng,
		coord.Distance(lat, lng, lat+dLat, lng+dLng))

	// Read the point as WGS-84.
	gLat, gLng := coord.WGS84ToGCJ02(lat, lng)
	bLat, bLng := coord.WGS84ToBD09(lat, lng)
	fmt.Printf("\n  As WGS-84:\n")
	fmt.Printf("    GCJ-02: %.8f, %.8f\n", gLat, gLng)
	fmt.Printf("    BD-09:  %.8f, %.8f\n", bLat, bLng)

	// Read the point as GCJ-02.
	aLat, aLng := coord.GCJ02ToWGS84(lat, lng)
	eLat, eLng := coord.GCJ02ToWGS84Exact(lat, lng)
	rLat, rLng := coord.WGS84ToGCJ02(eLat, eLng)
	fmt.Printf("\n  As GCJ-02:\n")
	fmt.Printf("    WGS-84 approx: %.8f, %.8f\n", aLat, aLng)
	fmt.Printf("    WGS-84 exact:  %.8f, %.8f\n", eLat, eLng)
	fmt.Printf("    Approx error:  %.3f m\n", coord.Distance(aLat, aLng, eLat, eLng))
	fmt.Printf("    Residual:      %.2e°\n", math.Max(math.Abs(rLat-lat), math.Abs(rLng-lng)))

	// Read the point as BD-09.
	cLat, cLng := coord.BD09ToGCJ02(lat, lng)
	wLat, wLng := coord.BD09ToWGS84(lat, lng)
	fmt.Printf("\n  As BD-09:\n")
	fmt.Printf("    GCJ-02: %.8f, %.8f\n", cLat, cLng)
	fmt.Printf("    WGS-84: %.8f, %.8f\n", wLat, wLng)
}
