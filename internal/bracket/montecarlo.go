package bracket

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Config configures a Monte Carlo simulation run
type Config struct {
	// BestOf is the series format; must be an odd positive integer.
	BestOf int
	// PerformanceSigma adds per-match Gaussian rating noise when positive.
	PerformanceSigma float64
	// TrialCount is the number of independent bracket replays.
	TrialCount int
	// Seed fixes the random source for reproducible runs; 0 seeds from the
	// clock.
	Seed int64
	// Workers fans trials out across goroutines with private counters
	// merged after all finish. Values below 2 run single-threaded.
	Workers int
}

// Validate validates simulation config parameters
func (c Config) Validate() error {
	if c.BestOf <= 0 || c.BestOf%2 == 0 {
		return fmt.Errorf("best-of must be an odd positive integer, got %d", c.BestOf)
	}
	if c.PerformanceSigma < 0 {
		return fmt.Errorf("performance sigma cannot be negative")
	}
	if c.TrialCount <= 0 {
		return fmt.Errorf("trial count must be positive")
	}
	return nil
}

// RunSimulation replays the bracket cfg.TrialCount times with a fresh
// bracket state per trial and returns per-team statistics sorted by
// championship probability. The input teams are read-only and shared across
// workers; each worker owns its random source and counters.
func RunSimulation(teams []SeededTeam, cfg Config) ([]TeamResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkBracketSize(len(teams), len(teams)); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if cfg.Workers < 2 {
		acc := NewAccumulator()
		engine := NewEngine(cfg.BestOf, cfg.PerformanceSigma, rand.New(rand.NewSource(seed)))
		for i := 0; i < cfg.TrialCount; i++ {
			if _, err := engine.SimulateTournament(teams, acc); err != nil {
				return nil, err
			}
		}
		return acc.Results(teams), nil
	}

	workers := cfg.Workers
	if workers > cfg.TrialCount {
		workers = cfg.TrialCount
	}

	accs := make([]*Accumulator, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		trials := cfg.TrialCount / workers
		if w < cfg.TrialCount%workers {
			trials++
		}

		wg.Add(1)
		go func(w, trials int) {
			defer wg.Done()
			acc := NewAccumulator()
			engine := NewEngine(cfg.BestOf, cfg.PerformanceSigma, rand.New(rand.NewSource(seed+int64(w))))
			for i := 0; i < trials; i++ {
				if _, err := engine.SimulateTournament(teams, acc); err != nil {
					errs[w] = err
					return
				}
			}
			accs[w] = acc
		}(w, trials)
	}
	wg.Wait()

	merged := NewAccumulator()
	for w := 0; w < workers; w++ {
		if errs[w] != nil {
			return nil, errs[w]
		}
		merged.Merge(accs[w])
	}
	return merged.Results(teams), nil
}
