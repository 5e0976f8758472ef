// Package shape handles shapefile import and export for map tooling: site
// point layers in, retrieved route polylines out.
package shape

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/habitability"
	"github.com/headwaters-lab/musselsim/internal/model"
)

// ImportSites reads a point shapefile of monitoring sites. Expected
// attribute fields (case-insensitive): NAME, plus optional PH, CALCIUM,
// ATTRACT, INFESTED. Coordinates come from the point geometry. Habitability
// is evaluated against the given thresholds the same way the text loader
// does it.
func ImportSites(shpPath string, pHThreshold, calciumThreshold float64) ([]model.Site, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shape: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, "NAME")
	if nameIdx < 0 {
		return nil, eris.Errorf("shape: required field NAME not found in %s", shpPath)
	}
	pHIdx := fieldIndex(reader, "PH")
	calciumIdx := fieldIndex(reader, "CALCIUM")
	attractIdx := fieldIndex(reader, "ATTRACT")
	infestedIdx := fieldIndex(reader, "INFESTED")

	log := zap.L().With(zap.String("component", "shape"))
	var sites []model.Site
	var skipped int

	for reader.Next() {
		_, geometry := reader.Shape()
		point, ok := geometry.(*shp.Point)
		if !ok {
			skipped++
			continue
		}

		name := strings.TrimSpace(attribute(reader, nameIdx))
		if name == "" {
			skipped++
			continue
		}

		s := model.Site{
			Name:           name,
			Lat:            point.Y,
			Lon:            point.X,
			PH:             floatAttribute(reader, pHIdx),
			Calcium:        floatAttribute(reader, calciumIdx),
			Attractiveness: 1,
		}
		if attr := floatAttribute(reader, attractIdx); attr != nil {
			s.Attractiveness = int(*attr)
		}
		if v := strings.TrimSpace(attribute(reader, infestedIdx)); v != "" && v != "0" && !strings.EqualFold(v, "false") {
			s.InitiallyInfested = true
		}

		factor, okHab, evalErr := habitability.Evaluate(s.PH, s.Calcium, pHThreshold, calciumThreshold)
		switch {
		case evalErr != nil:
			log.Warn("site excluded for invalid chemistry reading",
				zap.String("site", s.Name), zap.Error(evalErr))
		case okHab:
			s.Habitability = &factor
		}

		sites = append(sites, s)
	}

	if skipped > 0 {
		log.Debug("skipped shapefile records", zap.Int("skipped", skipped))
	}
	log.Info("site shapefile loaded", zap.String("path", shpPath), zap.Int("sites", len(sites)))
	return sites, nil
}

// fieldIndex returns the index of a named field, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

func attribute(reader *shp.Reader, idx int) string {
	if idx < 0 {
		return ""
	}
	return strings.TrimRight(reader.Attribute(idx), "\x00")
}

func floatAttribute(reader *shp.Reader, idx int) *float64 {
	raw := strings.TrimSpace(attribute(reader, idx))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
