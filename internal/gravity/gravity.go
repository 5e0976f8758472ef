// Package gravity implements the singly-constrained gravity trip
// distribution model: flow from county i to site j is proportional to the
// county's boat population, the site's attractiveness, and an inverse power
// of travel cost, normalized per county so that distributed trips sum
// exactly to the county's boats.
package gravity

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/model"
	"github.com/headwaters-lab/musselsim/internal/route"
)

// DefaultAlpha is the distance-decay exponent.
const DefaultAlpha = 2.0

// ErrDegenerateInput reports inputs for which the gravity model has no
// defined solution: a non-positive cost, or a county with zero outbound
// attractiveness mass. The balancing factors are globally coupled, so this
// is fatal to the whole distribution, not one cell.
var ErrDegenerateInput = eris.New("gravity: degenerate input")

// Model holds the fitted distribution. Balancing is A[i], Trips is the
// baseline T[i][j]. Decay caches W[j]*c[i][j]^-alpha (zero for excluded
// pairs) so the simulator can re-evaluate flows with a substituted origin
// vector without touching costs again.
type Model struct {
	Alpha     float64
	Balancing []float64
	Trips     [][]float64
	Decay     [][]float64
}

// Distribute fits the model for the frame's counties and sites over the
// given cost matrix.
//
//	A[i] = 1 / sum_j W[j] * c[i][j]^-alpha
//	T[i][j] = A[i] * O[i] * W[j] * c[i][j]^-alpha
func Distribute(frame *model.Frame, costs *route.Matrix, alpha float64) (*Model, error) {
	counties := frame.Counties()
	sites := frame.Sites()

	if costs.Rows() != len(counties) || costs.Cols() != len(sites) {
		return nil, eris.Errorf("gravity: cost matrix is %dx%d, want %dx%d",
			costs.Rows(), costs.Cols(), len(counties), len(sites))
	}
	if alpha <= 0 {
		return nil, eris.Errorf("gravity: alpha must be positive, got %g", alpha)
	}

	boats := frame.Boats()
	weights := frame.Weights()

	m := &Model{
		Alpha:     alpha,
		Balancing: make([]float64, len(counties)),
		Trips:     make([][]float64, len(counties)),
		Decay:     make([][]float64, len(counties)),
	}

	for i := range counties {
		m.Decay[i] = make([]float64, len(sites))
		var mass float64
		for j := range sites {
			c, ok := costs.Cost(i, j)
			if !ok {
				continue
			}
			if c <= 0 {
				return nil, eris.Wrapf(ErrDegenerateInput,
					"cost %g for (%s, %s)", c, counties[i].Name, sites[j].Name)
			}
			m.Decay[i][j] = float64(weights[j]) * math.Pow(c, -alpha)
			mass += m.Decay[i][j]
		}
		if mass <= 0 {
			return nil, eris.Wrapf(ErrDegenerateInput,
				"county %s has no outbound attractiveness mass", counties[i].Name)
		}
		m.Balancing[i] = 1 / mass
	}

	for i := range counties {
		m.Trips[i] = make([]float64, len(sites))
		for j := range sites {
			m.Trips[i][j] = m.Balancing[i] * float64(boats[i]) * m.Decay[i][j]
		}
	}

	zap.L().Debug("gravity: distribution fitted",
		zap.Int("counties", len(counties)),
		zap.Int("sites", len(sites)),
		zap.Float64("alpha", alpha),
	)

	return m, nil
}

// Reflow fills t[i][j] = A[i] * p[i] * W[j] * c[i][j]^-alpha, re-evaluating
// the distribution with p substituted for the county boat counts. t must be
// shaped like Trips.
func (m *Model) Reflow(p []float64, t [][]float64) {
	for i := range t {
		for j := range t[i] {
			t[i][j] = m.Balancing[i] * p[i] * m.Decay[i][j]
		}
	}
}
