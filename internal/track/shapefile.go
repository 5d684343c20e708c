package track

import (
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/pkg/errors"
)

// Shapefile attribute columns, in field order.
var shapefileFields = []shp.Field{
	shp.StringField("DRIVER", 64),
	shp.StringField("ORDER", 64),
	shp.NumberField("TIME", 12),
	shp.FloatField("LON", 16, 8),
	shp.FloatField("LAT", 16, 8),
}

// WriteShapefile writes records as an ESRI point shapefile at path (.shp,
// with .shx and .dbf alongside). Geometry uses the converted WGS-84
// coordinates; LON and LAT attributes keep the loaded ones.
func WriteShapefile(path string, records []Record) error {
	if !strings.EqualFold(filepath.Ext(path), ".shp") {
		return errors.Errorf("shapefile output %q must have .shp extension", path)
	}

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return errors.Wrap(err, "create shapefile")
	}
	defer w.Close()

	if err := w.SetFields(shapefileFields); err != nil {
		return errors.Wrap(err, "set shapefile fields")
	}

	for _, r := range records {
		n := int(w.Write(&shp.Point{X: r.WGSLon, Y: r.WGSLat}))
		attrs := []interface{}{r.DriverID, r.OrderID, int(r.Time), r.Lon, r.Lat}
		for field, v := range attrs {
			if err := w.WriteAttribute(n, field, v); err != nil {
				return errors.Wrapf(err, "write attribute %d of row %d", field, n)
			}
		}
	}
	return nil
}
