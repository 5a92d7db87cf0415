package search

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"rotorbreak/internal/fitness"
	"rotorbreak/internal/machine"
)

// DefaultProgressEvery is how many evaluated configurations pass between
// progress callbacks during an exhaustive sweep.
const DefaultProgressEvery = 100000

// ExhaustiveConfig parameterizes a full sweep of the configuration space:
// every ordered distinct rotor triple crossed with every start position.
type ExhaustiveConfig struct {
	Catalog       []machine.RotorSpec
	Plugboard     string
	Reflector     string
	Workers       int
	ProgressEvery uint64

	// Progress, when set, receives the total number of configurations
	// evaluated so far, reported every ProgressEvery evaluations. Calls may
	// arrive from multiple goroutines.
	Progress func(evaluated uint64)
}

func (c *ExhaustiveConfig) defaults() error {
	if len(c.Catalog) < 3 {
		return fmt.Errorf("%w: have %d", ErrCatalogTooSmall, len(c.Catalog))
	}
	if c.Reflector == "" {
		c.Reflector = machine.ReflectorB
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ProgressEvery == 0 {
		c.ProgressEvery = DefaultProgressEvery
	}
	return nil
}

// rotorTriples enumerates the ordered distinct triples in canonical order:
// left index outermost, then middle, then right.
func rotorTriples(catalogSize int) [][3]int {
	var triples [][3]int
	for left := 0; left < catalogSize; left++ {
		for middle := 0; middle < catalogSize; middle++ {
			if middle == left {
				continue
			}
			for right := 0; right < catalogSize; right++ {
				if right == left || right == middle {
					continue
				}
				triples = append(triples, [3]int{left, middle, right})
			}
		}
	}
	return triples
}

// SpaceSize is the number of configurations an exhaustive sweep of a catalog
// of the given size evaluates.
func SpaceSize(catalogSize int) uint64 {
	triples := uint64(catalogSize * (catalogSize - 1) * (catalogSize - 2))
	return triples * 26 * 26 * 26
}

// Exhaustive evaluates every configuration and returns the best. Triples are
// swept concurrently, but each triple keeps its own running best and the
// per-triple bests are reduced sequentially in canonical order with a
// strictly-greater comparison, so the winner is identical across worker
// counts: ties go to the configuration enumerated first.
func Exhaustive(ctx context.Context, ciphertext string, cfg ExhaustiveConfig) (Result, error) {
	if err := cfg.defaults(); err != nil {
		return Result{}, err
	}

	triples := rotorTriples(len(cfg.Catalog))
	bests := make([]Result, len(triples))
	var evaluated atomic.Uint64

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Workers)
	for i, triple := range triples {
		i, triple := i, triple
		group.Go(func() error {
			best, err := cfg.sweepTriple(ctx, ciphertext, triple, &evaluated)
			if err != nil {
				return err
			}
			bests[i] = best
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	best := bests[0]
	for _, candidate := range bests[1:] {
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	best.Evaluated = evaluated.Load()
	return best, nil
}

// sweepTriple scores all 26^3 start positions of one rotor triple. The
// machine is built once and repositioned per candidate.
func (c *ExhaustiveConfig) sweepTriple(ctx context.Context, ciphertext string, triple [3]int, evaluated *atomic.Uint64) (Result, error) {
	config := Config{
		Left: triple[0], Middle: triple[1], Right: triple[2],
		LeftPos: 'A', MiddlePos: 'A', RightPos: 'A',
	}
	m, err := config.Machine(c.Catalog, c.Plugboard, c.Reflector)
	if err != nil {
		return Result{}, fmt.Errorf("triple %v: %w", triple, err)
	}

	best := Result{Fitness: -1}
	for left := 0; left < machine.AlphabetSize; left++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for middle := 0; middle < machine.AlphabetSize; middle++ {
			for right := 0; right < machine.AlphabetSize; right++ {
				m.SetPositions([3]int{right, middle, left})
				plaintext := m.Decrypt(ciphertext)

				if score := fitness.Score(plaintext); score > best.Fitness {
					candidate := config
					candidate.LeftPos = byte('A' + left)
					candidate.MiddlePos = byte('A' + middle)
					candidate.RightPos = byte('A' + right)
					best = Result{Config: candidate, Fitness: score, Plaintext: plaintext}
				}

				if n := evaluated.Add(1); c.Progress != nil && n%c.ProgressEvery == 0 {
					c.Progress(n)
				}
			}
		}
	}
	return best, nil
}
