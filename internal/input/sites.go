// Package input reads the site and county files the simulation consumes.
// Both TSV and CSV layouts are accepted; the delimiter is sniffed from the
// header line. Site files carry one row per chemistry reading, and the
// newest reading per parameter wins.
package input

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/headwaters-lab/musselsim/internal/habitability"
	"github.com/headwaters-lab/musselsim/internal/model"
)

// Site file columns.
const (
	siteColName = iota
	siteColLat
	siteColLon
	siteColDate
	siteColParameter
	siteColValue
	siteColAttractiveness
	siteColInfested
	siteColumns
)

type siteAccumulator struct {
	site        model.Site
	pHDate      string
	calciumDate string
}

// LoadSites reads a site file and returns one model.Site per distinct site
// name, in first-appearance order, with habitability evaluated against the
// given thresholds. Sites with no usable chemistry, or with an invalid
// (negative) reading, come back with a nil Habitability so the frame can
// report them as excluded; they never fail the whole load.
func LoadSites(path string, pHThreshold, calciumThreshold float64) ([]model.Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "input: open site file %s", path)
	}
	defer func() { _ = f.Close() }()

	sites, err := readSites(f)
	if err != nil {
		return nil, eris.Wrapf(err, "input: site file %s", path)
	}

	log := zap.L().With(zap.String("component", "input"))
	out := make([]model.Site, 0, len(sites))
	for _, acc := range sites {
		s := acc.site
		factor, ok, evalErr := habitability.Evaluate(s.PH, s.Calcium, pHThreshold, calciumThreshold)
		switch {
		case evalErr != nil:
			log.Warn("site excluded for invalid chemistry reading",
				zap.String("site", s.Name),
				zap.Error(evalErr),
			)
		case !ok:
			log.Debug("site has no chemistry data", zap.String("site", s.Name))
		default:
			s.Habitability = &factor
		}
		out = append(out, s)
	}

	log.Info("site file loaded", zap.String("path", path), zap.Int("sites", len(out)))
	return out, nil
}

func readSites(r io.Reader) ([]*siteAccumulator, error) {
	rows, err := readDelimited(r, siteColumns)
	if err != nil {
		return nil, err
	}

	var order []*siteAccumulator
	byName := make(map[string]*siteAccumulator)

	for n, row := range rows {
		name := canonicalName(row[siteColName])
		if name == "" {
			return nil, eris.Errorf("row %d: empty site name", n+2)
		}

		acc, seen := byName[name]
		if !seen {
			lat, latErr := strconv.ParseFloat(row[siteColLat], 64)
			lon, lonErr := strconv.ParseFloat(row[siteColLon], 64)
			if latErr != nil || lonErr != nil {
				return nil, eris.Errorf("row %d: bad coordinates for site %q", n+2, name)
			}
			acc = &siteAccumulator{site: model.Site{Name: name, Lat: lat, Lon: lon, Attractiveness: 1}}
			byName[name] = acc
			order = append(order, acc)
		}

		applyReading(acc, row[siteColDate], row[siteColParameter], row[siteColValue])

		if v := strings.TrimSpace(row[siteColAttractiveness]); v != "" {
			attr, attrErr := strconv.Atoi(v)
			if attrErr != nil {
				return nil, eris.Errorf("row %d: bad attractiveness %q for site %q", n+2, v, name)
			}
			acc.site.Attractiveness = attr
		}
		if v := strings.TrimSpace(row[siteColInfested]); v != "" && v != "0" {
			acc.site.InitiallyInfested = true
		}
	}

	return order, nil
}

// applyReading records a chemistry reading if it is newer than the one
// already held for that parameter. Dates compare lexically, matching the
// ISO-style date stamps in the survey exports; an unparsable value is
// treated as no reading.
func applyReading(acc *siteAccumulator, date, param, raw string) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return
	}
	date = strings.TrimSpace(date)

	switch strings.ToLower(strings.TrimSpace(param)) {
	case "calcium":
		if acc.site.Calcium == nil || date > acc.calciumDate {
			acc.site.Calcium = &value
			acc.calciumDate = date
		}
	case "ph":
		if acc.site.PH == nil || date > acc.pHDate {
			acc.site.PH = &value
			acc.pHDate = date
		}
	}
}

// readDelimited reads all data rows, sniffing tab vs comma from the header
// line. The header line itself is discarded. Rows shorter than minColumns
// are padded with empty fields so optional trailing columns can be omitted.
func readDelimited(r io.Reader, minColumns int) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "read")
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return nil, eris.New("empty file")
	}

	header := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		header = text[:idx]
	}

	cr := csv.NewReader(strings.NewReader(text))
	if strings.Contains(header, "\t") {
		cr.Comma = '\t'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "parse")
	}
	if len(records) < 2 {
		return nil, eris.New("no data rows after header")
	}

	rows := records[1:]
	for i, row := range rows {
		for len(row) < minColumns {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, nil
}

// canonicalName normalizes a site or county name to NFC and trims
// whitespace, so survey exports with differing Unicode forms key together.
func canonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
