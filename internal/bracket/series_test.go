package bracket

import (
	"math"
	"testing"
)

func TestSeriesWinProbabilityBestOfOne(t *testing.T) {
	for _, p := range []float64{0.0, 0.1, 0.5, 0.73, 1.0} {
		if got := SeriesWinProbability(p, 1); got != p {
			t.Errorf("SeriesWinProbability(%v, 1) = %v, want unchanged", p, got)
		}
	}
}

func TestSeriesWinProbabilityFairStaysFair(t *testing.T) {
	for _, bestOf := range []int{1, 3, 5, 7} {
		got := SeriesWinProbability(0.5, bestOf)
		if math.Abs(got-0.5) > 1e-9 {
			t.Errorf("bestOf=%d: fair map prob should stay 0.5, got %v", bestOf, got)
		}
	}
}

func TestSeriesWinProbabilityAmplifies(t *testing.T) {
	p := 0.6
	bo3 := SeriesWinProbability(p, 3)
	bo5 := SeriesWinProbability(p, 5)
	if !(bo5 > bo3 && bo3 > p) {
		t.Fatalf("longer series must favor the stronger side: p=%v bo3=%v bo5=%v", p, bo3, bo5)
	}

	// Symmetric damping below 0.5.
	p = 0.4
	bo3 = SeriesWinProbability(p, 3)
	bo5 = SeriesWinProbability(p, 5)
	if !(bo5 < bo3 && bo3 < p) {
		t.Fatalf("longer series must punish the weaker side: p=%v bo3=%v bo5=%v", p, bo3, bo5)
	}
}

func TestSeriesWinProbabilityBestOfThreeClosedForm(t *testing.T) {
	// P(2-0) + P(2-1) = p^2 + 2p^2(1-p)
	p := 0.65
	want := p*p + 2*p*p*(1-p)
	got := SeriesWinProbability(p, 3)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("bo3 closed form: want %v, got %v", want, got)
	}
}

func TestSeriesWinProbabilityComplement(t *testing.T) {
	for _, p := range []float64{0.2, 0.44, 0.81} {
		sum := SeriesWinProbability(p, 5) + SeriesWinProbability(1-p, 5)
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("p=%v: series probabilities must complement, sum=%v", p, sum)
		}
	}
}

func TestBinomial(t *testing.T) {
	cases := []struct {
		n, k int
		want float64
	}{
		{3, 2, 3}, {5, 3, 10}, {5, 0, 1}, {7, 4, 35}, {4, 5, 0},
	}
	for _, tc := range cases {
		if got := binomial(tc.n, tc.k); got != tc.want {
			t.Errorf("binomial(%d,%d) = %v, want %v", tc.n, tc.k, got, tc.want)
		}
	}
}
