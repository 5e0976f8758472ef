package aggregate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorFractions(t *testing.T) {
	t.Parallel()

	c := NewCollector(2, 3)

	// Two trials; site 0 infested in both, site 1 in one, site 2 in none.
	require.NoError(t, c.AddTrial([][]bool{
		{true, true, false},
		{true, true, false},
	}))
	require.NoError(t, c.AddTrial([][]bool{
		{true, false, false},
		{true, false, false},
	}))

	s, err := c.Summary()
	require.NoError(t, err)

	assert.Equal(t, 2, s.Trials)
	assert.Equal(t, []float64{1, 0.5, 0}, s.Fractions[0])
	assert.Equal(t, []float64{1, 0.5, 0}, s.Fractions[1])
	assert.Equal(t, [][]int{{2, 2}, {1, 1}}, s.TrialTotals)
}

func TestCollectorShapeErrors(t *testing.T) {
	t.Parallel()

	c := NewCollector(2, 2)

	assert.Error(t, c.AddTrial([][]bool{{true, true}}))
	assert.Error(t, c.AddTrial([][]bool{{true}, {true}}))
	assert.Zero(t, c.Trials())
}

func TestCollectorEmpty(t *testing.T) {
	t.Parallel()

	c := NewCollector(1, 1)
	_, err := c.Summary()
	assert.Error(t, err)
}

func TestCollectorConcurrent(t *testing.T) {
	t.Parallel()

	const trials = 64
	c := NewCollector(1, 2)

	var wg sync.WaitGroup
	for n := 0; n < trials; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Even trials infest site 0, odd trials site 1.
			snap := [][]bool{{n%2 == 0, n%2 == 1}}
			assert.NoError(t, c.AddTrial(snap))
		}(n)
	}
	wg.Wait()

	s, err := c.Summary()
	require.NoError(t, err)
	assert.Equal(t, trials, s.Trials)
	assert.Equal(t, []float64{0.5, 0.5}, s.Fractions[0])
}

func TestAggregateTensor(t *testing.T) {
	t.Parallel()

	s, err := Aggregate([][][]bool{
		{{true, false}},
		{{false, false}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0}, s.Fractions[0])

	_, err = Aggregate(nil)
	assert.Error(t, err)
}
