package main

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/sim"
	"github.com/pthm-cable/swarm/telemetry"
)

// Coverage bonus weight: a run that mapped its whole grid scores this many
// cells of goal distance better.
const coverageWeight = 10.0

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	steps       int
	sampleEvery int
	seeds       []int64
	baseConfig  *config.Config

	mu          sync.Mutex
	lastResult  seedResult
	bestFitness float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, steps int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		steps:       steps,
		sampleEvery: max(1, baseCfg.Telemetry.SampleEvery),
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// seedResult holds the final sample of one run, averaged across seeds once
// aggregated.
type seedResult struct {
	goalDist float64
	coverage float64
}

// Last returns the averaged final sample of the most recent evaluation.
func (fe *FitnessEvaluator) Last() (goalDist, coverage float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResult.goalDist, fe.lastResult.coverage
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Seeds run in parallel; a failing seed fails the evaluation.
func (fe *FitnessEvaluator) Evaluate(x []float64) (float64, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	results := make([]seedResult, len(fe.seeds))
	var g errgroup.Group
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.runSimulation(cfg, seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var avg seedResult
	for _, r := range results {
		avg.goalDist += r.goalDist
		avg.coverage += r.coverage
	}
	n := float64(len(results))
	avg.goalDist /= n
	avg.coverage /= n
	fitness := computeFitness(avg)

	fe.mu.Lock()
	fe.lastResult = avg
	fe.bestFitness = min(fe.bestFitness, fitness)
	fe.mu.Unlock()
	return fitness, nil
}

// runSimulation steps one seeded swarm and returns its final sample.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (seedResult, error) {
	drv, err := sim.NewFromConfig(cfg, seed)
	if err != nil {
		return seedResult{}, err
	}
	sampler := telemetry.NewSampler(drv, nil, telemetry.SamplerOptions{Seed: seed, HistorySize: 3})

	for step := 1; step <= fe.steps; step++ {
		if err := drv.Step(); err != nil {
			return seedResult{}, err
		}
		if step%fe.sampleEvery == 0 {
			if _, err := sampler.Sample(drv.Steps()); err != nil {
				return seedResult{}, err
			}
		}
	}
	stats, err := sampler.Sample(drv.Steps())
	if err != nil {
		return seedResult{}, err
	}
	return seedResult{goalDist: stats.GoalDistMean, coverage: stats.Coverage}, nil
}

// copyConfig returns a copy of the base config safe to modify.
// Scenario slices are shared and never written.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness is the mean goal distance less a coverage bonus.
func computeFitness(r seedResult) float64 {
	return r.goalDist - coverageWeight*r.coverage
}
