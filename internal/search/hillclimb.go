package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"rotorbreak/internal/fitness"
	"rotorbreak/internal/machine"
)

var ErrNoRand = errors.New("hill climb requires a random source")

const (
	// DefaultMaxIterations bounds a single hill-climb run.
	DefaultMaxIterations = 10000
	// DefaultStagnationLimit is how many consecutive non-improving neighbors
	// a climb tolerates before restarting from a fresh random configuration.
	DefaultStagnationLimit = 100
)

// climbState tracks where the climber is in its improve/stall/restart cycle.
type climbState int

const (
	stateImproving climbState = iota
	stateStagnating
	stateRestarting
)

// HillClimbConfig parameterizes a stochastic climb over the configuration
// space. Rand is mandatory: two climbs with equally seeded sources visit the
// same configurations in the same order.
type HillClimbConfig struct {
	Catalog         []machine.RotorSpec
	Plugboard       string
	Reflector       string
	MaxIterations   int
	StagnationLimit int
	Rand            *rand.Rand

	// Progress, when set, is called with the running best after every
	// improvement.
	Progress func(iteration int, best Result)
}

func (c *HillClimbConfig) defaults() error {
	if c.Rand == nil {
		return ErrNoRand
	}
	if len(c.Catalog) < 3 {
		return fmt.Errorf("%w: have %d", ErrCatalogTooSmall, len(c.Catalog))
	}
	if c.Reflector == "" {
		c.Reflector = machine.ReflectorB
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = DefaultStagnationLimit
	}
	return nil
}

// HillClimb searches for the configuration whose decryption of the ciphertext
// scores highest. Each iteration scores one mutated neighbor of the current
// configuration; a neighbor is adopted only on strict improvement, and after
// StagnationLimit consecutive rejections the climb restarts from a random
// configuration while the global best is kept.
func HillClimb(ctx context.Context, ciphertext string, cfg HillClimbConfig) (Result, error) {
	if err := cfg.defaults(); err != nil {
		return Result{}, err
	}

	evaluate := func(c Config) (Result, error) {
		m, err := c.Machine(cfg.Catalog, cfg.Plugboard, cfg.Reflector)
		if err != nil {
			return Result{}, fmt.Errorf("candidate %v: %w", c, err)
		}
		plaintext := m.Decrypt(ciphertext)
		return Result{Config: c, Fitness: fitness.Score(plaintext), Plaintext: plaintext}, nil
	}

	current, err := evaluate(RandomConfig(cfg.Rand, len(cfg.Catalog)))
	if err != nil {
		return Result{}, err
	}
	best := current
	best.Evaluated = 1
	best.Trace = []float64{best.Fitness}

	state := stateImproving
	stagnant := 0
	for iteration := 1; iteration < cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		switch state {
		case stateRestarting:
			restarted, err := evaluate(RandomConfig(cfg.Rand, len(cfg.Catalog)))
			if err != nil {
				return best, err
			}
			current = restarted
			stagnant = 0
			state = stateImproving
		default:
			neighbor, err := evaluate(current.Config.Mutate(cfg.Rand, len(cfg.Catalog)))
			if err != nil {
				return best, err
			}
			if neighbor.Fitness > current.Fitness {
				current = neighbor
				stagnant = 0
				state = stateImproving
			} else {
				stagnant++
				state = stateStagnating
			}
		}
		best.Evaluated++

		if current.Fitness > best.Fitness {
			current.Evaluated = best.Evaluated
			current.Trace = append(best.Trace, current.Fitness)
			best = current
			if cfg.Progress != nil {
				cfg.Progress(iteration, best)
			}
		}
		if state == stateStagnating && stagnant > cfg.StagnationLimit {
			state = stateRestarting
		}
	}

	return best, nil
}
