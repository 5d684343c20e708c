package track

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultLimit is the number of rows loaded when no limit is given on the
// command line.
const DefaultLimit = 1000000

// numColumns is the column count of a trajectory file:
// driver_id, order_id, time, lon, lat.
const numColumns = 5

// Load reads at most limit records from the headerless CSV file at path.
// limit <= 0 reads the whole file.
func Load(path string, limit int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open trajectory file")
	}
	defer f.Close()

	records, err := Read(f, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return records, nil
}

// Read parses headerless trajectory CSV rows from r.
func Read(r io.Reader, limit int) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numColumns
	cr.ReuseRecord = true

	var out []Record
	for limit <= 0 || len(out) < limit {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse csv")
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string) (Record, error) {
	t, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "time %q", row[2])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "lon %q", row[3])
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "lat %q", row[4])
	}
	return Record{
		DriverID: row[0],
		OrderID:  row[1],
		Time:     t,
		Lon:      lon,
		Lat:      lat,
	}, nil
}

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"driver_id", "order_id", "time", "lon", "lat", "lon_wgs", "lat_wgs"}

// WriteCSV writes records with a header row, including the converted columns.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	row := make([]string, len(CSVHeader))
	for _, r := range records {
		row[0] = r.DriverID
		row[1] = r.OrderID
		row[2] = strconv.FormatInt(r.Time, 10)
		row[3] = formatCoord(r.Lon)
		row[4] = formatCoord(r.Lat)
		row[5] = formatCoord(r.WGSLon)
		row[6] = formatCoord(r.WGSLat)
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// WriteCSVFile writes records to a new CSV file at path.
func WriteCSVFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create csv output")
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close csv output")
}

// formatCoord prints the shortest representation that parses back to v.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
