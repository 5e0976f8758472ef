package input

import (
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/model"
)

// County file columns. A trailing county-seat column is tolerated and
// ignored.
const (
	countyColName = iota
	countyColLat
	countyColLon
	countyColBoats
	countyColumns
)

// LoadCounties reads a county file and returns one model.County per row, in
// file order. Duplicate names keep the first row, matching the upstream
// export behavior.
func LoadCounties(path string) ([]model.County, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "input: open county file %s", path)
	}
	defer func() { _ = f.Close() }()

	rows, err := readDelimited(f, countyColumns)
	if err != nil {
		return nil, eris.Wrapf(err, "input: county file %s", path)
	}

	var counties []model.County
	seen := make(map[string]bool)
	for n, row := range rows {
		name := canonicalName(row[countyColName])
		if name == "" {
			return nil, eris.Errorf("input: row %d: empty county name", n+2)
		}
		if seen[name] {
			continue
		}

		lat, latErr := strconv.ParseFloat(row[countyColLat], 64)
		lon, lonErr := strconv.ParseFloat(row[countyColLon], 64)
		if latErr != nil || lonErr != nil {
			return nil, eris.Errorf("input: row %d: bad coordinates for county %q", n+2, name)
		}
		boats, boatsErr := strconv.Atoi(row[countyColBoats])
		if boatsErr != nil {
			return nil, eris.Errorf("input: row %d: bad boat count %q for county %q", n+2, row[countyColBoats], name)
		}

		seen[name] = true
		counties = append(counties, model.County{Name: name, Lat: lat, Lon: lon, Boats: boats})
	}

	zap.L().Info("county file loaded", zap.String("path", path), zap.Int("counties", len(counties)))
	return counties, nil
}
