package route

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/model"
)

// Matrix holds the pairwise travel cost c[i][j] between every county i and
// active site j. Pairs whose provider reported ErrCostUnavailable are
// marked absent and excluded from distribution.
type Matrix struct {
	costs       [][]float64
	ok          [][]bool
	unavailable int
}

// BuildMatrix queries the provider for every (county, site) pair in frame
// order. Per-pair ErrCostUnavailable failures are excluded and counted; any
// other provider error aborts the build.
func BuildMatrix(ctx context.Context, p Provider, frame *model.Frame) (*Matrix, error) {
	counties := frame.Counties()
	sites := frame.Sites()

	m := &Matrix{
		costs: make([][]float64, len(counties)),
		ok:    make([][]bool, len(counties)),
	}

	for i, county := range counties {
		m.costs[i] = make([]float64, len(sites))
		m.ok[i] = make([]bool, len(sites))
		for j, site := range sites {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c, err := p.Cost(ctx, county, site)
			if err != nil {
				if eris.Is(err, ErrCostUnavailable) {
					m.unavailable++
					zap.L().Debug("route: pair excluded",
						zap.String("county", county.Name),
						zap.String("site", site.Name),
						zap.Error(err),
					)
					continue
				}
				return nil, eris.Wrapf(err, "route: cost for (%s, %s)", county.Name, site.Name)
			}
			m.costs[i][j] = c
			m.ok[i][j] = true
		}
	}

	if m.unavailable > 0 {
		zap.L().Warn("route: matrix built with excluded pairs",
			zap.Int("excluded_pairs", m.unavailable),
			zap.Int("counties", len(counties)),
			zap.Int("sites", len(sites)),
		)
	}

	return m, nil
}

// NewMatrix wraps precomputed costs. Every entry must be a valid cost;
// intended for tests and for callers that already hold a dense matrix.
func NewMatrix(costs [][]float64) *Matrix {
	ok := make([][]bool, len(costs))
	for i := range costs {
		ok[i] = make([]bool, len(costs[i]))
		for j := range costs[i] {
			ok[i][j] = true
		}
	}
	return &Matrix{costs: costs, ok: ok}
}

// Cost returns c[i][j] and whether the pair is available.
func (m *Matrix) Cost(i, j int) (float64, bool) {
	return m.costs[i][j], m.ok[i][j]
}

// Rows returns the county-axis length.
func (m *Matrix) Rows() int { return len(m.costs) }

// Cols returns the site-axis length.
func (m *Matrix) Cols() int {
	if len(m.costs) == 0 {
		return 0
	}
	return len(m.costs[0])
}

// Unavailable returns the number of excluded pairs.
func (m *Matrix) Unavailable() int { return m.unavailable }
