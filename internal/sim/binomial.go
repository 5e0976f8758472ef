package sim

import "math/rand/v2"

// binomial draws the number of successes in n Bernoulli trials with success
// probability p, by inversion of the binomial CDF. Expected work is O(n*p),
// which replaces the per-boat draw loop with the same probability law.
func binomial(rng *rand.Rand, n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}

	u := rng.Float64()
	// Walk the pmf via the recurrence
	// P(k+1) = P(k) * (n-k)/(k+1) * p/(1-p).
	q := p / (1 - p)
	pmf := pow(1-p, n)
	cdf := pmf
	for k := 0; k < n; k++ {
		if u < cdf {
			return k
		}
		pmf *= float64(n-k) / float64(k+1) * q
		cdf += pmf
	}
	return n
}

// pow computes x^n for non-negative integer n by squaring; avoids the
// gradual precision loss of math.Pow for large integer exponents.
func pow(x float64, n int) float64 {
	result := 1.0
	for n > 0 {
		if n&1 == 1 {
			result *= x
		}
		x *= x
		n >>= 1
	}
	return result
}
