// Package rating implements ELO rating estimation from historical match results.
package rating

import "math"

// Default estimator parameters. K=32 is the standard esports K-factor.
const (
	DefaultKFactor       = 32.0
	DefaultInitialRating = 1500.0
)

// ExpectedScore returns the probability that a team rated a beats a team
// rated b on a single map:
//
//	P(A wins) = 1 / (1 + 10^((Rb - Ra)/400))
//
// The result is strictly inside (0,1) for any finite ratings, so downstream
// probability math never sees a degenerate 0 or 1.
func ExpectedScore(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}
