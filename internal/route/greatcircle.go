package route

import (
	"context"
	"math"

	"github.com/rotisserie/eris"

	"github.com/headwaters-lab/musselsim/internal/model"
)

// earthRadiusKm is Earth's mean radius.
const earthRadiusKm = 6371.0

// GreatCircle is a Provider that returns the spherical law-of-cosines
// distance in kilometers between county seat and site coordinates. It is
// the offline fallback when no road route has been retrieved for a pair.
type GreatCircle struct{}

// Cost implements Provider.
func (GreatCircle) Cost(_ context.Context, origin model.County, dest model.Site) (float64, error) {
	km := DistanceKm(origin.Lat, origin.Lon, dest.Lat, dest.Lon)
	if km <= 0 || math.IsNaN(km) {
		// Coincident coordinates produce a zero cost, which the gravity
		// model cannot weight.
		return 0, eris.Wrapf(ErrCostUnavailable, "degenerate great-circle distance %g km", km)
	}
	return km, nil
}

// DistanceKm computes the great-circle distance between two points given in
// decimal degrees, using the spherical law of cosines.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLonR := (lon2 - lon1) * math.Pi / 180

	cosArg := math.Sin(lat1r)*math.Sin(lat2r) + math.Cos(lat1r)*math.Cos(lat2r)*math.Cos(dLonR)
	// Floating-point noise can push the argument just outside [-1, 1].
	cosArg = math.Max(-1, math.Min(1, cosArg))
	return math.Acos(cosArg) * earthRadiusKm
}
