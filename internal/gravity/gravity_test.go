package gravity

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headwaters-lab/musselsim/internal/model"
	"github.com/headwaters-lab/musselsim/internal/route"
)

func testFrame(t *testing.T, boats []int, weights []int) *model.Frame {
	t.Helper()

	counties := make([]model.County, len(boats))
	for i, b := range boats {
		counties[i] = model.County{Name: countyName(i), Lat: 44, Lon: -93, Boats: b}
	}
	hab := 0.5
	sites := make([]model.Site, len(weights))
	for j, w := range weights {
		sites[j] = model.Site{Name: siteName(j), Lat: 45, Lon: -94, Attractiveness: w, Habitability: &hab}
	}

	frame, err := model.NewFrame(counties, sites)
	require.NoError(t, err)
	return frame
}

func countyName(i int) string { return string(rune('A'+i)) + " County" }
func siteName(j int) string   { return "Lake " + string(rune('a'+j)) }

func TestDistributeConservation(t *testing.T) {
	t.Parallel()

	frame := testFrame(t, []int{1000, 500, 250}, []int{1, 3, 2, 5})
	costs := route.NewMatrix([][]float64{
		{10, 25, 40, 80},
		{15, 5, 60, 30},
		{50, 45, 10, 20},
	})

	m, err := Distribute(frame, costs, DefaultAlpha)
	require.NoError(t, err)

	boats := frame.Boats()
	for i, row := range m.Trips {
		var sum float64
		for _, v := range row {
			sum += v
		}
		assert.InDelta(t, float64(boats[i]), sum, 1e-9, "county %d", i)
	}
}

func TestDistributeZeroWeightSiteGetsNothing(t *testing.T) {
	t.Parallel()

	frame := testFrame(t, []int{100}, []int{0, 2})
	costs := route.NewMatrix([][]float64{{10, 10}})

	m, err := Distribute(frame, costs, DefaultAlpha)
	require.NoError(t, err)

	assert.Zero(t, m.Trips[0][0])
	assert.InDelta(t, 100, m.Trips[0][1], 1e-9)
}

func TestDistributeCloserSiteWinsMore(t *testing.T) {
	t.Parallel()

	frame := testFrame(t, []int{100}, []int{1, 1})
	costs := route.NewMatrix([][]float64{{10, 20}})

	m, err := Distribute(frame, costs, DefaultAlpha)
	require.NoError(t, err)

	// With alpha=2 and double the distance, the near site draws 4x the trips.
	assert.InDelta(t, 4.0, m.Trips[0][0]/m.Trips[0][1], 1e-9)
}

func TestDistributeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		costs [][]float64
		alpha float64
	}{
		{
			name:  "zero cost",
			costs: [][]float64{{0, 10}},
			alpha: DefaultAlpha,
		},
		{
			name:  "negative cost",
			costs: [][]float64{{-5, 10}},
			alpha: DefaultAlpha,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frame := testFrame(t, []int{100}, []int{1, 1})
			_, err := Distribute(frame, route.NewMatrix(tt.costs), tt.alpha)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrDegenerateInput))
		})
	}
}

func TestDistributeNonPositiveAlpha(t *testing.T) {
	t.Parallel()

	frame := testFrame(t, []int{100}, []int{1})
	_, err := Distribute(frame, route.NewMatrix([][]float64{{10}}), 0)
	require.Error(t, err)
}

func TestDistributeNoMass(t *testing.T) {
	t.Parallel()

	// All of the county's pairs have zero attractiveness.
	frame := testFrame(t, []int{100}, []int{0, 0})
	_, err := Distribute(frame, route.NewMatrix([][]float64{{10, 20}}), DefaultAlpha)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDegenerateInput))
}

func TestReflowMatchesTripsForBoatVector(t *testing.T) {
	t.Parallel()

	frame := testFrame(t, []int{1000, 500}, []int{1, 2, 3})
	costs := route.NewMatrix([][]float64{
		{10, 25, 40},
		{15, 5, 60},
	})

	m, err := Distribute(frame, costs, DefaultAlpha)
	require.NoError(t, err)

	p := []float64{1000, 500}
	tr := make([][]float64, len(p))
	for i := range tr {
		tr[i] = make([]float64, 3)
	}
	m.Reflow(p, tr)

	for i := range tr {
		for j := range tr[i] {
			assert.InDelta(t, m.Trips[i][j], tr[i][j], 1e-9)
		}
	}
}
