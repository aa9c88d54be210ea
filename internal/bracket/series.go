// Package bracket implements single-elimination tournament simulation over
// ELO-rated teams: series win probabilities, one-shot bracket replay and
// Monte Carlo aggregation.
package bracket

// SeriesWinProbability converts a single-map win probability into the
// probability of winning a best-of-N series, via the binomial tail:
//
//	P(series) = sum over k=winsNeeded..N of C(N,k) * p^k * (1-p)^(N-k)
//
// bestOf values <= 1 return mapProb unchanged. For p > 0.5 the result grows
// with bestOf (longer series favor the stronger side) and p == 0.5 stays at
// 0.5 for any format.
func SeriesWinProbability(mapProb float64, bestOf int) float64 {
	if bestOf <= 1 {
		return mapProb
	}

	winsNeeded := bestOf/2 + 1
	p := mapProb
	q := 1.0 - p

	seriesProb := 0.0
	for k := winsNeeded; k <= bestOf; k++ {
		seriesProb += binomial(bestOf, k) * pow(p, k) * pow(q, bestOf-k)
	}
	return seriesProb
}

// binomial returns C(n,k) as a float; n is a small series length so the
// running-product form is exact
func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := 1.0
	for i := 0; i < k; i++ {
		c = c * float64(n-i) / float64(i+1)
	}
	return c
}

func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
