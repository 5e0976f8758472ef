package model

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Frame is the indexed, stable-order view of a scenario: counties on the
// origin axis, habitable sites on the destination axis. Identity and index
// are bound once at construction and never reconstructed mid-run. Sites
// without a defined habitability are set aside in Excluded rather than
// silently dropped.
type Frame struct {
	counties  []County
	sites     []Site
	excluded  []Site
	countyIdx map[string]int
	siteIdx   map[string]int
}

// NewFrame validates and indexes the scenario inputs. Site order and county
// order are preserved from the input collections.
func NewFrame(counties []County, sites []Site) (*Frame, error) {
	if len(counties) == 0 {
		return nil, eris.New("model: no counties")
	}

	f := &Frame{
		countyIdx: make(map[string]int, len(counties)),
		siteIdx:   make(map[string]int, len(sites)),
	}

	for _, c := range counties {
		if c.Name == "" {
			return nil, eris.New("model: county with empty name")
		}
		if _, dup := f.countyIdx[c.Name]; dup {
			return nil, eris.Errorf("model: duplicate county %q", c.Name)
		}
		if c.Boats < 0 {
			return nil, eris.Errorf("model: county %q has negative boat count %d", c.Name, c.Boats)
		}
		f.countyIdx[c.Name] = len(f.counties)
		f.counties = append(f.counties, c)
	}

	for _, s := range sites {
		if s.Name == "" {
			return nil, eris.New("model: site with empty name")
		}
		if s.Attractiveness < 0 {
			return nil, eris.Errorf("model: site %q has negative attractiveness %d", s.Name, s.Attractiveness)
		}
		if s.Habitability == nil {
			f.excluded = append(f.excluded, s)
			continue
		}
		if h := *s.Habitability; h < 0 || h > 1 {
			return nil, eris.Errorf("model: site %q habitability %g outside [0,1]", s.Name, h)
		}
		if _, dup := f.siteIdx[s.Name]; dup {
			return nil, eris.Errorf("model: duplicate site %q", s.Name)
		}
		f.siteIdx[s.Name] = len(f.sites)
		f.sites = append(f.sites, s)
	}

	if len(f.sites) == 0 {
		return nil, eris.New("model: no sites with usable chemistry data")
	}

	if len(f.excluded) > 0 {
		zap.L().Info("model: sites excluded for missing chemistry",
			zap.Int("excluded", len(f.excluded)),
			zap.Int("active", len(f.sites)),
		)
	}

	return f, nil
}

// Counties returns the origin axis in index order.
func (f *Frame) Counties() []County { return f.counties }

// Sites returns the active destination axis in index order.
func (f *Frame) Sites() []Site { return f.sites }

// Excluded returns the sites omitted for lack of usable chemistry data.
func (f *Frame) Excluded() []Site { return f.excluded }

// CountyIndex returns the index for a county name.
func (f *Frame) CountyIndex(name string) (int, bool) {
	i, ok := f.countyIdx[name]
	return i, ok
}

// SiteIndex returns the index for an active site name.
func (f *Frame) SiteIndex(name string) (int, bool) {
	i, ok := f.siteIdx[name]
	return i, ok
}

// Boats returns the O[i] vector: boat population per county.
func (f *Frame) Boats() []int {
	o := make([]int, len(f.counties))
	for i, c := range f.counties {
		o[i] = c.Boats
	}
	return o
}

// Weights returns the W[j] vector: attractiveness per active site.
func (f *Frame) Weights() []int {
	w := make([]int, len(f.sites))
	for j, s := range f.sites {
		w[j] = s.Attractiveness
	}
	return w
}

// Habitability returns the habitability factor per active site.
func (f *Frame) Habitability() []float64 {
	h := make([]float64, len(f.sites))
	for j, s := range f.sites {
		h[j] = *s.Habitability
	}
	return h
}

// InitialInfestation returns the trial-start infested vector. A site whose
// habitability is zero cannot hold an infestation, matching the infest
// no-op rule.
func (f *Frame) InitialInfestation() []bool {
	init := make([]bool, len(f.sites))
	for j, s := range f.sites {
		init[j] = s.InitiallyInfested && *s.Habitability > 0
	}
	return init
}
