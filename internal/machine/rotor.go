package machine

import (
	"errors"
	"fmt"
)

var (
	ErrNotPermutation = errors.New("rotor wiring is not a permutation of the alphabet")
	ErrBadNotch       = errors.New("notch symbol outside alphabet")
)

// Rotor holds an immutable wiring permutation plus a mutable rotational
// position. The ring offset shifts the wiring at lookup time; it never
// rewrites the wiring table itself, so the same Rotor value can be reset and
// replayed from any start position.
type Rotor struct {
	wiring   [AlphabetSize]int
	inverse  [AlphabetSize]int
	notch    int
	ring     int
	position int
}

// NewRotor validates the wiring permutation and notch symbol. Ring and start
// position are taken modulo the alphabet size.
func NewRotor(wiring string, notch byte, ring, position int) (*Rotor, error) {
	if len(wiring) != AlphabetSize {
		return nil, fmt.Errorf("%w: length %d", ErrNotPermutation, len(wiring))
	}
	r := &Rotor{}
	var seen [AlphabetSize]bool
	for i := 0; i < AlphabetSize; i++ {
		idx := indexOf(wiring[i])
		if idx < 0 {
			return nil, fmt.Errorf("%w: symbol %q", ErrNotPermutation, wiring[i])
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate symbol %c", ErrNotPermutation, wiring[i])
		}
		seen[idx] = true
		r.wiring[i] = idx
		r.inverse[idx] = i
	}

	n := indexOf(notch)
	if n < 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadNotch, notch)
	}
	r.notch = n
	r.ring = normalizePosition(ring)
	r.position = normalizePosition(position)
	return r, nil
}

func normalizePosition(p int) int {
	return ((p % AlphabetSize) + AlphabetSize) % AlphabetSize
}

// offset combines the ring setting and the current position, the only place
// the two interact.
func (r *Rotor) offset() int {
	return (r.position + r.ring) % AlphabetSize
}

// Forward maps an alphabet index through the wiring in the signal's entry
// direction at the rotor's current offset.
func (r *Rotor) Forward(idx int) int {
	return r.wiring[(idx+r.offset())%AlphabetSize]
}

// Backward inverts Forward at the same offset.
func (r *Rotor) Backward(idx int) int {
	return (r.inverse[idx] - r.offset() + 2*AlphabetSize) % AlphabetSize
}

// Step advances the rotor by one position.
func (r *Rotor) Step() {
	r.position = (r.position + 1) % AlphabetSize
}

// AtNotch reports whether the rotor currently sits at its notch, the
// condition that forces the next rotor in the stack to advance.
func (r *Rotor) AtNotch() bool {
	return r.position == r.notch
}

// Position returns the current rotational offset in [0, 26).
func (r *Rotor) Position() int {
	return r.position
}

// SetPosition rewinds or advances the rotor to an absolute position.
func (r *Rotor) SetPosition(p int) {
	r.position = normalizePosition(p)
}
