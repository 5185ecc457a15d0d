package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Study is a walk-forward analysis. Every parameter realization is run on every window,
// each window once per stochastic run with its own seed.
type Study struct {
	Base Spec

	// one entry per run, a nil slice means a single run with the base realization
	Realizations   []map[string]float64
	SubRuns        int
	StochasticRuns int
	OutOfSample    float64
	Kind           WindowKind
	From           time.Time
	To             time.Time

	// 0 means one worker per cpu
	Parallelism int
}

type Result struct {
	Name          string  `json:"name"`
	Run           int     `json:"run"`
	SubRun        int     `json:"sub_run"`
	StochasticRun int     `json:"stochastic_run"`
	Window        Window  `json:"window"`
	Report        *Report `json:"report,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// Specs expands the study into one spec per run, in run, sub run, stochastic run order
func (s Study) Specs() ([]Spec, []Result, error) {
	realizations := s.Realizations
	if len(realizations) == 0 {
		realizations = []map[string]float64{s.Base.Realization}
	}
	subRuns, stochastic := max(s.SubRuns, 1), max(s.StochasticRuns, 1)

	windows, err := Windows(s.Kind, s.From, s.To, s.OutOfSample, subRuns)
	if err != nil {
		return nil, nil, err
	}

	// #nosec G404
	seeds := rand.New(rand.NewSource(s.Base.Seed))

	var specs []Spec
	var results []Result
	for run, realization := range realizations {
		for subRun, window := range windows {
			for stochasticRun := 0; stochasticRun < stochastic; stochasticRun++ {
				name := fmt.Sprintf("%s run_%d sub_run_%d", s.Base.Name, run, subRun)
				if stochastic > 1 {
					name += fmt.Sprintf(" stochastic_%d", stochasticRun)
				}

				spec := s.Base
				spec.Name = name
				spec.Realization = realization
				spec.Seed = seeds.Int63()
				spec.From = window.Optimisation.From
				spec.To = window.Optimisation.To
				// a shared journal would interleave the runs
				spec.Journal = nil

				specs = append(specs, spec)
				results = append(results, Result{
					Name:          name,
					Run:           run,
					SubRun:        subRun,
					StochasticRun: stochasticRun,
					Window:        window,
				})
			}
		}
	}
	return specs, results, nil
}

// Run executes every spec on a bounded pool. Results keep the order of Specs, failed runs
// carry their error and all failures are combined into the returned error.
func (s Study) Run(ctx context.Context, logger *zap.Logger) ([]Result, error) {
	specs, results, err := s.Specs()
	if err != nil {
		return nil, err
	}

	limit := s.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	errs := make([]error, len(specs))
	var g errgroup.Group
	g.SetLimit(limit)

	for i := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			kernel, err := NewKernel(logger, specs[i])
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", specs[i].Name, err)
				return nil
			}
			report, err := kernel.Run(ctx)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", specs[i].Name, err)
				return nil
			}
			results[i].Report = &report
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			results[i].Error = err.Error()
		}
	}

	logger.Info("study finished", zap.Int("runs", len(specs)), zap.Int("workers", limit))
	return results, multierr.Combine(errs...)
}
