// Package aggregate reduces per-trial infestation snapshots to per-year
// infestation fractions. Trials contribute whole snapshots only, so a
// cancelled trial can never bias the result, and counts are integers, so
// the reduction is exact regardless of trial completion order.
package aggregate

import (
	"sync"

	"github.com/rotisserie/eris"
)

// Collector accumulates trial outcomes as integer success counts per
// (year, site). Safe for concurrent AddTrial calls.
type Collector struct {
	mu     sync.Mutex
	years  int
	sites  int
	counts [][]int
	totals [][]int
	trials int
}

// Summary is the aggregated output: Fractions[year][site] is the fraction
// of trials in which the site was infested at the end of that year, and
// TrialTotals[n][year] is the infested-site count per year for the n-th
// completed trial (completion order, not issue order).
type Summary struct {
	Trials      int         `json:"trials"`
	Fractions   [][]float64 `json:"fractions"`
	TrialTotals [][]int     `json:"trial_totals"`
}

// NewCollector creates a Collector for the given result shape.
func NewCollector(years, sites int) *Collector {
	counts := make([][]int, years)
	for y := range counts {
		counts[y] = make([]int, sites)
	}
	return &Collector{years: years, sites: sites, counts: counts}
}

// AddTrial folds one completed trial into the running counts. snapshots
// must hold one infestation vector per simulated year.
func (c *Collector) AddTrial(snapshots [][]bool) error {
	if len(snapshots) != c.years {
		return eris.Errorf("aggregate: trial has %d year snapshots, want %d", len(snapshots), c.years)
	}
	for y := range snapshots {
		if len(snapshots[y]) != c.sites {
			return eris.Errorf("aggregate: year %d snapshot has %d sites, want %d", y, len(snapshots[y]), c.sites)
		}
	}

	totals := make([]int, c.years)
	for y := range snapshots {
		for _, infested := range snapshots[y] {
			if infested {
				totals[y]++
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for y := range snapshots {
		for j, infested := range snapshots[y] {
			if infested {
				c.counts[y][j]++
			}
		}
	}
	c.totals = append(c.totals, totals)
	c.trials++
	return nil
}

// Trials returns the number of trials folded in so far.
func (c *Collector) Trials() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trials
}

// Summary reduces the counts to fractions.
func (c *Collector) Summary() (*Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trials == 0 {
		return nil, eris.New("aggregate: no trials collected")
	}

	fractions := make([][]float64, c.years)
	for y := range fractions {
		fractions[y] = make([]float64, c.sites)
		for j := range fractions[y] {
			fractions[y][j] = float64(c.counts[y][j]) / float64(c.trials)
		}
	}

	totals := make([][]int, len(c.totals))
	for i, t := range c.totals {
		totals[i] = append([]int(nil), t...)
	}
	return &Summary{Trials: c.trials, Fractions: fractions, TrialTotals: totals}, nil
}

// Aggregate reduces a full results tensor results[trial][year][site] in one
// call. Convenience for callers that retained the tensor.
func Aggregate(results [][][]bool) (*Summary, error) {
	if len(results) == 0 {
		return nil, eris.New("aggregate: empty results tensor")
	}
	c := NewCollector(len(results[0]), siteCount(results[0]))
	for _, trial := range results {
		if err := c.AddTrial(trial); err != nil {
			return nil, err
		}
	}
	return c.Summary()
}

func siteCount(trial [][]bool) int {
	if len(trial) == 0 {
		return 0
	}
	return len(trial[0])
}
