// Package search recovers machine configurations from ciphertext alone by
// exploring the rotor-and-position space with the fitness scorer as the only
// signal. Both strategies use an injected random source so runs are
// reproducible given a seed.
package search

import (
	"errors"
	"fmt"
	"math/rand"

	"rotorbreak/internal/machine"
)

var (
	ErrDuplicateRotor  = errors.New("rotor triple must be pairwise distinct")
	ErrRotorOutOfRange = errors.New("rotor index outside catalog")
	ErrCatalogTooSmall = errors.New("catalog needs at least three rotors")
	ErrBadPosition     = errors.New("start position must be a letter A-Z")
)

// Config is one point in the search space: which catalog rotors sit in the
// left, middle and right slots and the start position of each. Config values
// are immutable; Mutate returns a fresh neighbor.
type Config struct {
	Left, Middle, Right          int
	LeftPos, MiddlePos, RightPos byte
}

// RandomConfig draws a uniformly random configuration with a distinct rotor
// triple.
func RandomConfig(rng *rand.Rand, catalogSize int) Config {
	indices := rng.Perm(catalogSize)
	return Config{
		Left:      indices[0],
		Middle:    indices[1],
		Right:     indices[2],
		LeftPos:   randomPosition(rng),
		MiddlePos: randomPosition(rng),
		RightPos:  randomPosition(rng),
	}
}

func randomPosition(rng *rand.Rand) byte {
	return byte('A' + rng.Intn(machine.AlphabetSize))
}

// Validate checks the configuration against a catalog of the given size.
func (c Config) Validate(catalogSize int) error {
	for _, idx := range []int{c.Left, c.Middle, c.Right} {
		if idx < 0 || idx >= catalogSize {
			return fmt.Errorf("%w: %d of %d", ErrRotorOutOfRange, idx, catalogSize)
		}
	}
	if c.Left == c.Middle || c.Left == c.Right || c.Middle == c.Right {
		return fmt.Errorf("%w: %d-%d-%d", ErrDuplicateRotor, c.Left, c.Middle, c.Right)
	}
	for _, p := range []byte{c.LeftPos, c.MiddlePos, c.RightPos} {
		if p < 'A' || p > 'Z' {
			return fmt.Errorf("%w: %q", ErrBadPosition, p)
		}
	}
	return nil
}

// Mutate derives a neighbor by one atomic move: replace one rotor (redrawn
// until distinct from the other two) or randomize one start position.
func (c Config) Mutate(rng *rand.Rand, catalogSize int) Config {
	neighbor := c
	switch rng.Intn(6) {
	case 0:
		neighbor.Left = redrawDistinct(rng, catalogSize, c.Middle, c.Right)
	case 1:
		neighbor.Middle = redrawDistinct(rng, catalogSize, c.Left, c.Right)
	case 2:
		neighbor.Right = redrawDistinct(rng, catalogSize, c.Left, c.Middle)
	case 3:
		neighbor.LeftPos = randomPosition(rng)
	case 4:
		neighbor.MiddlePos = randomPosition(rng)
	case 5:
		neighbor.RightPos = randomPosition(rng)
	}
	return neighbor
}

func redrawDistinct(rng *rand.Rand, catalogSize int, taken1, taken2 int) int {
	for {
		idx := rng.Intn(catalogSize)
		if idx != taken1 && idx != taken2 {
			return idx
		}
	}
}

// Machine instantiates a cipher engine for this configuration. The machine's
// signal order puts the fast rotor first, so the right slot maps to index 0.
func (c Config) Machine(catalog []machine.RotorSpec, plugboard, reflector string) (*machine.Machine, error) {
	if err := c.Validate(len(catalog)); err != nil {
		return nil, err
	}
	right, middle, left := catalog[c.Right], catalog[c.Middle], catalog[c.Left]
	return machine.New(machine.Settings{
		Wirings:   []string{right.Wiring, middle.Wiring, left.Wiring},
		Notches:   []byte{right.Notch, middle.Notch, left.Notch},
		Positions: []int{int(c.RightPos - 'A'), int(c.MiddlePos - 'A'), int(c.LeftPos - 'A')},
		Plugboard: plugboard,
		Reflector: reflector,
	})
}

// Names resolves the rotor triple to catalog names, left to right.
func (c Config) Names(catalog []machine.RotorSpec) [3]string {
	return [3]string{catalog[c.Left].Name, catalog[c.Middle].Name, catalog[c.Right].Name}
}

func (c Config) String() string {
	return fmt.Sprintf("rotors %d-%d-%d positions %c-%c-%c",
		c.Left+1, c.Middle+1, c.Right+1, c.LeftPos, c.MiddlePos, c.RightPos)
}

// Result is a scored configuration: the candidate, the plaintext its machine
// produced from the ciphertext, and that plaintext's fitness.
type Result struct {
	Config    Config
	Fitness   float64
	Plaintext string
	Evaluated uint64
	Trace     []float64
}
