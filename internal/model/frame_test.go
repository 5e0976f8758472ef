package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestNewFrame(t *testing.T) {
	t.Parallel()

	counties := []County{
		{Name: "Alpha", Lat: 44, Lon: -93, Boats: 100},
		{Name: "Beta", Lat: 45, Lon: -94, Boats: 50},
	}
	sites := []Site{
		{Name: "Near", Lat: 44.5, Lon: -93.5, Attractiveness: 2, Habitability: fp(0.8), InitiallyInfested: true},
		{Name: "NoData", Lat: 44.6, Lon: -93.6, Attractiveness: 1},
		{Name: "Barren", Lat: 44.7, Lon: -93.7, Attractiveness: 3, Habitability: fp(0), InitiallyInfested: true},
	}

	f, err := NewFrame(counties, sites)
	require.NoError(t, err)

	assert.Len(t, f.Counties(), 2)
	assert.Len(t, f.Sites(), 2)
	require.Len(t, f.Excluded(), 1)
	assert.Equal(t, "NoData", f.Excluded()[0].Name)

	i, ok := f.CountyIndex("Beta")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = f.SiteIndex("NoData")
	assert.False(t, ok)

	assert.Equal(t, []int{100, 50}, f.Boats())
	assert.Equal(t, []int{2, 3}, f.Weights())
	assert.Equal(t, []float64{0.8, 0}, f.Habitability())

	// A zero-habitability site cannot carry an initial infestation.
	assert.Equal(t, []bool{true, false}, f.InitialInfestation())
}

func TestNewFrameErrors(t *testing.T) {
	t.Parallel()

	county := County{Name: "Alpha", Boats: 10}
	site := Site{Name: "Lake", Attractiveness: 1, Habitability: fp(0.5)}

	tests := []struct {
		name     string
		counties []County
		sites    []Site
	}{
		{
			name:  "no counties",
			sites: []Site{site},
		},
		{
			name:     "empty county name",
			counties: []County{{Boats: 1}},
			sites:    []Site{site},
		},
		{
			name:     "duplicate county",
			counties: []County{county, county},
			sites:    []Site{site},
		},
		{
			name:     "negative boats",
			counties: []County{{Name: "Alpha", Boats: -1}},
			sites:    []Site{site},
		},
		{
			name:     "empty site name",
			counties: []County{county},
			sites:    []Site{{Attractiveness: 1, Habitability: fp(0.5)}},
		},
		{
			name:     "duplicate site",
			counties: []County{county},
			sites:    []Site{site, site},
		},
		{
			name:     "negative attractiveness",
			counties: []County{county},
			sites:    []Site{{Name: "Lake", Attractiveness: -1, Habitability: fp(0.5)}},
		},
		{
			name:     "habitability above one",
			counties: []County{county},
			sites:    []Site{{Name: "Lake", Attractiveness: 1, Habitability: fp(1.5)}},
		},
		{
			name:     "no usable sites",
			counties: []County{county},
			sites:    []Site{{Name: "Lake", Attractiveness: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFrame(tt.counties, tt.sites)
			assert.Error(t, err)
		})
	}
}
