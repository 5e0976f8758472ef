// Package sim runs the stochastic infestation-spread model: independent
// Monte Carlo trials, each simulating year-by-year trip-borne spread over a
// fitted gravity distribution.
package sim

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/headwaters-lab/musselsim/internal/aggregate"
	"github.com/headwaters-lab/musselsim/internal/gravity"
	"github.com/headwaters-lab/musselsim/internal/model"
)

// Hard limits on the simulation horizon.
const (
	MaxYears  = 50
	MaxTrials = 1000
)

// ErrConfiguration reports a simulation parameter outside its documented
// range. Checked before any trial starts; never recovered per-boat.
var ErrConfiguration = eris.New("sim: configuration out of range")

// Params are the simulation knobs. All ranges are validated up front.
type Params struct {
	// SettleRisk is the per-arrival settlement probability before the
	// habitability multiplier. Range [0,1].
	SettleRisk float64
	// Decontamination is the fraction of boats assumed cleaned between
	// trips, applied as a deterministic per-iteration scaling of the
	// infested-boat pool. Range [0,1].
	Decontamination float64
	// TripsPerYear is the number of intra-year round-trip iterations.
	TripsPerYear int
	// Years is the simulated horizon, 1..MaxYears.
	Years int
	// Trials is the Monte Carlo repetition count, 1..MaxTrials.
	Trials int
	// Seed fixes the pseudo-random streams; trial t draws from an
	// independent PCG stream keyed (Seed, t), so results are reproducible
	// under any worker scheduling.
	Seed uint64
	// Workers bounds concurrent trials; 0 means GOMAXPROCS.
	Workers int
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		SettleRisk:   0.02,
		TripsPerYear: 8,
		Years:        10,
		Trials:       100,
		Seed:         1,
	}
}

// Validate checks every parameter range.
func (p Params) Validate() error {
	if p.SettleRisk < 0 || p.SettleRisk > 1 {
		return eris.Wrapf(ErrConfiguration, "settle risk %g not in [0,1]", p.SettleRisk)
	}
	if p.Decontamination < 0 || p.Decontamination > 1 {
		return eris.Wrapf(ErrConfiguration, "decontamination fraction %g not in [0,1]", p.Decontamination)
	}
	if p.TripsPerYear < 1 {
		return eris.Wrapf(ErrConfiguration, "trips per year %d < 1", p.TripsPerYear)
	}
	if p.Years < 1 || p.Years > MaxYears {
		return eris.Wrapf(ErrConfiguration, "years %d not in [1,%d]", p.Years, MaxYears)
	}
	if p.Trials < 1 || p.Trials > MaxTrials {
		return eris.Wrapf(ErrConfiguration, "trials %d not in [1,%d]", p.Trials, MaxTrials)
	}
	return nil
}

// Simulator owns the read-only inputs shared across trials: the fitted
// gravity model, habitability factors, and the trial-start infestation
// vector. Per-trial mutable state lives on each trial's stack.
type Simulator struct {
	grav    *gravity.Model
	hab     []float64
	initial []bool
	params  Params
}

// New builds a Simulator over a frame and a fitted distribution.
func New(frame *model.Frame, grav *gravity.Model, params Params) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(grav.Trips) != len(frame.Counties()) {
		return nil, eris.Errorf("sim: gravity model has %d origin rows, frame has %d counties",
			len(grav.Trips), len(frame.Counties()))
	}
	return &Simulator{
		grav:    grav,
		hab:     frame.Habitability(),
		initial: frame.InitialInfestation(),
		params:  params,
	}, nil
}

// Run executes all Monte Carlo trials and returns the aggregated per-year
// infestation fractions. On cancellation it returns the context error and
// no aggregate: a truncated trial count would bias the estimate.
func (s *Simulator) Run(ctx context.Context) (*aggregate.Summary, error) {
	workers := s.params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	log := zap.L().With(zap.String("component", "sim"))
	log.Info("starting Monte Carlo run",
		zap.Int("trials", s.params.Trials),
		zap.Int("years", s.params.Years),
		zap.Int("workers", workers),
		zap.Uint64("seed", s.params.Seed),
	)
	start := time.Now()

	collector := aggregate.NewCollector(s.params.Years, len(s.hab))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for trial := 0; trial < s.params.Trials; trial++ {
		if gctx.Err() != nil {
			break // stop issuing new trials promptly
		}
		g.Go(func() error {
			snapshots, err := s.runTrial(gctx, trial)
			if err != nil {
				return err
			}
			return collector.AddTrial(snapshots)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary, err := collector.Summary()
	if err != nil {
		return nil, err
	}

	log.Info("Monte Carlo run complete",
		zap.Int("trials", summary.Trials),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}

// runTrial simulates one full multi-year trial and returns its per-year
// snapshots. Infestation is monotonic within the trial: once a site turns
// infested it stays infested until the trial ends.
func (s *Simulator) runTrial(ctx context.Context, trial int) ([][]bool, error) {
	rng := rand.New(rand.NewPCG(s.params.Seed, uint64(trial)))

	counties := len(s.grav.Trips)
	sites := len(s.hab)

	infested := slices.Clone(s.initial)
	p := make([]float64, counties)
	t := make([][]float64, counties)
	for i := range t {
		t[i] = make([]float64, sites)
	}
	q := make([]float64, sites)
	snapshots := make([][]bool, s.params.Years)

	for year := 0; year < s.params.Years; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for j := range q {
			q[j] = 0
		}

		for iter := 0; iter < s.params.TripsPerYear; iter++ {
			// P[i]: expected boats from county i that visited an infested
			// site, less the decontaminated share.
			for i := 0; i < counties; i++ {
				p[i] = 0
				for j := 0; j < sites; j++ {
					if infested[j] {
						p[i] += s.grav.Trips[i][j]
					}
				}
				p[i] *= 1 - s.params.Decontamination
			}

			// t[i][j]: infested-boat flow this iteration, the gravity model
			// re-evaluated with P in place of the boat populations.
			s.grav.Reflow(p, t)

			for j := 0; j < sites; j++ {
				for i := 0; i < counties; i++ {
					q[j] += t[i][j]
				}
			}
		}

		// Stochastic settlement: Q[j] discrete arrivals, each settling with
		// probability settleRisk * habitability.
		for j := 0; j < sites; j++ {
			if infested[j] || s.hab[j] <= 0 {
				continue
			}
			arrivals := roundArrivals(q[j])
			if arrivals == 0 {
				continue
			}
			prob := s.params.SettleRisk * s.hab[j]
			if prob > 1 {
				prob = 1
			}
			if binomial(rng, arrivals, prob) > 0 {
				infested[j] = true
			}
		}

		snapshots[year] = slices.Clone(infested)
	}

	return snapshots, nil
}

// roundArrivals realizes a fractional expected arrival count as whole
// boats: round half up, floored at zero.
func roundArrivals(q float64) int {
	if q <= 0 || math.IsNaN(q) {
		return 0
	}
	return int(math.Floor(q + 0.5))
}
