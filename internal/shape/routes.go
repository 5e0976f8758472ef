package shape

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/store"
	"github.com/headwaters-lab/musselsim/pkg/ors"
)

// ExportRoutes writes cached routes with geometry as a PolyLine shapefile
// so GIS tooling can style the travel network. Routes without geometry (or
// with undecodable geometry) are skipped and counted, not fatal.
func ExportRoutes(shpPath string, routes []store.Route) (int, error) {
	writer, err := shp.Create(shpPath, shp.POLYLINE)
	if err != nil {
		return 0, eris.Wrapf(err, "shape: create shapefile %s", shpPath)
	}
	defer writer.Close()

	writer.SetFields([]shp.Field{
		shp.StringField("COUNTY", 80),
		shp.StringField("SITE", 80),
		shp.FloatField("DIST_KM", 12, 3),
	})

	var written, skipped int
	for _, r := range routes {
		if r.Geometry == "" {
			skipped++
			continue
		}
		line, decodeErr := ors.DecodePolyline(r.Geometry)
		if decodeErr != nil {
			zap.L().Warn("shape: undecodable route geometry",
				zap.String("county", r.County),
				zap.String("site", r.Site),
				zap.Error(decodeErr),
			)
			skipped++
			continue
		}

		writer.Write(shp.NewPolyLine([][]shp.Point{linePoints(line)}))
		writer.WriteAttribute(written, 0, r.County)
		writer.WriteAttribute(written, 1, r.Site)
		writer.WriteAttribute(written, 2, r.DistanceKm)
		written++
	}

	zap.L().Info("route shapefile written",
		zap.String("path", shpPath),
		zap.Int("routes", written),
		zap.Int("skipped", skipped),
	)
	return written, nil
}

func linePoints(line *geom.LineString) []shp.Point {
	coords := line.Coords()
	points := make([]shp.Point, len(coords))
	for i, c := range coords {
		points[i] = shp.Point{X: c.X(), Y: c.Y()}
	}
	return points
}
