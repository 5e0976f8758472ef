package sim

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headwaters-lab/musselsim/internal/gravity"
	"github.com/headwaters-lab/musselsim/internal/model"
	"github.com/headwaters-lab/musselsim/internal/route"
)

// twoLakeFixture builds a two-county, two-lake arena where lake "Source" is
// infested at trial start and lake "Target" is perfectly habitable, with a
// uniform travel cost of 10 for every pair.
func twoLakeFixture(t *testing.T) (*model.Frame, *gravity.Model) {
	t.Helper()

	hab := 1.0
	counties := []model.County{
		{Name: "Alpha County", Lat: 44, Lon: -93, Boats: 1000},
		{Name: "Beta County", Lat: 44.5, Lon: -93.5, Boats: 500},
	}
	sites := []model.Site{
		{Name: "Source", Lat: 45, Lon: -94, Attractiveness: 1, Habitability: &hab, InitiallyInfested: true},
		{Name: "Target", Lat: 45.5, Lon: -94.5, Attractiveness: 1, Habitability: &hab},
	}

	frame, err := model.NewFrame(counties, sites)
	require.NoError(t, err)

	costs := route.NewMatrix([][]float64{
		{10, 10},
		{10, 10},
	})
	grav, err := gravity.Distribute(frame, costs, gravity.DefaultAlpha)
	require.NoError(t, err)

	return frame, grav
}

func testParams() Params {
	p := DefaultParams()
	p.Years = 5
	p.Trials = 20
	return p
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"settle risk above one", func(p *Params) { p.SettleRisk = 1.1 }},
		{"settle risk negative", func(p *Params) { p.SettleRisk = -0.1 }},
		{"decontamination above one", func(p *Params) { p.Decontamination = 2 }},
		{"zero trips per year", func(p *Params) { p.TripsPerYear = 0 }},
		{"zero years", func(p *Params) { p.Years = 0 }},
		{"years above cap", func(p *Params) { p.Years = MaxYears + 1 }},
		{"zero trials", func(p *Params) { p.Trials = 0 }},
		{"trials above cap", func(p *Params) { p.Trials = MaxTrials + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrConfiguration))
		})
	}

	assert.NoError(t, DefaultParams().Validate())
}

func TestRunCertainSettlement(t *testing.T) {
	t.Parallel()

	frame, grav := twoLakeFixture(t)
	params := testParams()
	params.SettleRisk = 1

	s, err := New(frame, grav, params)
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	// With certain settlement and positive infested flow, the target lake
	// is infested by the end of year one in every trial.
	assert.Equal(t, params.Trials, summary.Trials)
	for y := range summary.Fractions {
		assert.Equal(t, []float64{1, 1}, summary.Fractions[y], "year %d", y+1)
	}
}

func TestRunZeroSettleRisk(t *testing.T) {
	t.Parallel()

	frame, grav := twoLakeFixture(t)
	params := testParams()
	params.SettleRisk = 0

	s, err := New(frame, grav, params)
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	// Nothing ever settles; only the initially infested lake counts.
	for y := range summary.Fractions {
		assert.Equal(t, []float64{1, 0}, summary.Fractions[y], "year %d", y+1)
	}
}

func TestRunFullDecontamination(t *testing.T) {
	t.Parallel()

	frame, grav := twoLakeFixture(t)
	params := testParams()
	params.SettleRisk = 1
	params.Decontamination = 1

	s, err := New(frame, grav, params)
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	// Every infested boat is cleaned, so no flow reaches the target.
	for y := range summary.Fractions {
		assert.Equal(t, []float64{1, 0}, summary.Fractions[y], "year %d", y+1)
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	frame, grav := twoLakeFixture(t)

	run := func(workers int) [][]float64 {
		params := testParams()
		params.SettleRisk = 0.0002
		params.Seed = 99
		params.Workers = workers

		s, err := New(frame, grav, params)
		require.NoError(t, err)
		summary, err := s.Run(context.Background())
		require.NoError(t, err)
		return summary.Fractions
	}

	assert.Equal(t, run(1), run(4))
}

func TestRunSeedChangesOutcome(t *testing.T) {
	t.Parallel()

	frame, grav := twoLakeFixture(t)

	run := func(seed uint64) [][]float64 {
		params := testParams()
		params.Years = 10
		params.Trials = 50
		params.SettleRisk = 0.0002
		params.Seed = seed

		s, err := New(frame, grav, params)
		require.NoError(t, err)
		summary, err := s.Run(context.Background())
		require.NoError(t, err)
		return summary.Fractions
	}

	assert.NotEqual(t, run(1), run(2))
}

func TestRunMonotonicFractions(t *testing.T) {
	t.Parallel()

	frame, grav := twoLakeFixture(t)
	params := testParams()
	params.Years = 10
	params.SettleRisk = 0.0002

	s, err := New(frame, grav, params)
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	// Infestation is monotonic within each trial, so the per-site fraction
	// can never decrease from one year to the next.
	for y := 1; y < len(summary.Fractions); y++ {
		for j := range summary.Fractions[y] {
			assert.GreaterOrEqual(t, summary.Fractions[y][j], summary.Fractions[y-1][j],
				"year %d site %d", y+1, j)
		}
	}
}

func TestRunUnattractiveSiteNeverInfested(t *testing.T) {
	t.Parallel()

	hab := 1.0
	counties := []model.County{{Name: "Alpha County", Lat: 44, Lon: -93, Boats: 1000}}
	sites := []model.Site{
		{Name: "Source", Lat: 45, Lon: -94, Attractiveness: 1, Habitability: &hab, InitiallyInfested: true},
		{Name: "Ignored", Lat: 45.5, Lon: -94.5, Attractiveness: 0, Habitability: &hab},
	}
	frame, err := model.NewFrame(counties, sites)
	require.NoError(t, err)

	grav, err := gravity.Distribute(frame, route.NewMatrix([][]float64{{10, 10}}), gravity.DefaultAlpha)
	require.NoError(t, err)

	params := testParams()
	params.SettleRisk = 1

	s, err := New(frame, grav, params)
	require.NoError(t, err)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	// Zero attractiveness means zero trips, so no arrivals ever reach it.
	for y := range summary.Fractions {
		assert.Equal(t, []float64{1, 0}, summary.Fractions[y], "year %d", y+1)
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	frame, grav := twoLakeFixture(t)
	params := testParams()
	params.Years = MaxYears
	params.Trials = MaxTrials

	s, err := New(frame, grav, params)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := s.Run(ctx)
	require.Error(t, err)
	assert.Nil(t, summary)
}

func TestNewRejectsShapeMismatch(t *testing.T) {
	t.Parallel()

	frame, _ := twoLakeFixture(t)
	_, err := New(frame, &gravity.Model{Trips: make([][]float64, 5)}, testParams())
	assert.Error(t, err)
}

func TestRoundArrivals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		q    float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{1.49, 1},
		{1.5, 2},
		{2.7, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundArrivals(tt.q), "q=%g", tt.q)
	}
}
