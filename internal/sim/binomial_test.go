package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinomialDegenerate(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 1))

	assert.Zero(t, binomial(rng, 0, 0.5))
	assert.Zero(t, binomial(rng, -1, 0.5))
	assert.Zero(t, binomial(rng, 10, 0))
	assert.Zero(t, binomial(rng, 10, -0.1))
	assert.Equal(t, 10, binomial(rng, 10, 1))
	assert.Equal(t, 10, binomial(rng, 10, 1.5))
}

func TestBinomialBounds(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 0))
	for i := 0; i < 1000; i++ {
		k := binomial(rng, 20, 0.3)
		assert.GreaterOrEqual(t, k, 0)
		assert.LessOrEqual(t, k, 20)
	}
}

func TestBinomialMean(t *testing.T) {
	t.Parallel()

	const (
		draws = 20000
		n     = 50
		p     = 0.2
	)

	rng := rand.New(rand.NewPCG(7, 0))
	var sum int
	for i := 0; i < draws; i++ {
		sum += binomial(rng, n, p)
	}
	mean := float64(sum) / draws

	// np = 10; the sample mean of 20k draws stays well within 2%.
	assert.InDelta(t, float64(n)*p, mean, 0.2)
}

func TestBinomialDeterministic(t *testing.T) {
	t.Parallel()

	a := rand.New(rand.NewPCG(3, 9))
	b := rand.New(rand.NewPCG(3, 9))
	for i := 0; i < 100; i++ {
		assert.Equal(t, binomial(a, 30, 0.4), binomial(b, 30, 0.4))
	}
}

func TestPow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, pow(0.5, 0))
	assert.Equal(t, 0.5, pow(0.5, 1))
	assert.InDelta(t, 0.25, pow(0.5, 2), 1e-15)
	assert.InDelta(t, 1.0/1024, pow(0.5, 10), 1e-18)
}
