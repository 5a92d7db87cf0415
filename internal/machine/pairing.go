package machine

import (
	"errors"
	"fmt"
)

var (
	ErrOddPairString  = errors.New("pairing string has odd length")
	ErrBadPairSymbol  = errors.New("pairing symbol outside alphabet")
	ErrSelfPair       = errors.New("symbol paired with itself")
	ErrDoublePair     = errors.New("symbol paired more than once")
	ErrPartialReflect = errors.New("reflector must pair every symbol")
)

// Pairing is a symmetric substitution over the alphabet: every paired symbol
// maps to exactly one partner and back again. Unpaired symbols map to
// themselves. The plugboard and reflector share this shape; the reflector
// additionally requires every symbol to be paired.
type Pairing struct {
	partner [AlphabetSize]int8
	paired  int
}

// NewPlugboard builds a pairing from a pair-concatenated string such as
// "AZBYCX" (A<->Z, B<->Y, C<->X). Symbols left out of the string map to
// themselves.
func NewPlugboard(pairs string) (Pairing, error) {
	return newPairing(pairs, false)
}

// NewReflector builds a pairing that must cover all 26 symbols (13 pairs,
// no fixed points).
func NewReflector(pairs string) (Pairing, error) {
	return newPairing(pairs, true)
}

func newPairing(pairs string, full bool) (Pairing, error) {
	var p Pairing
	for i := range p.partner {
		p.partner[i] = int8(i)
	}

	if len(pairs)%2 != 0 {
		return Pairing{}, fmt.Errorf("%w: %q", ErrOddPairString, pairs)
	}
	var seen [AlphabetSize]bool
	for i := 0; i < len(pairs); i += 2 {
		a := indexOf(pairs[i])
		b := indexOf(pairs[i+1])
		if a < 0 || b < 0 {
			return Pairing{}, fmt.Errorf("%w: %q", ErrBadPairSymbol, pairs[i:i+2])
		}
		if a == b {
			return Pairing{}, fmt.Errorf("%w: %c", ErrSelfPair, pairs[i])
		}
		if seen[a] {
			return Pairing{}, fmt.Errorf("%w: %c", ErrDoublePair, pairs[i])
		}
		if seen[b] {
			return Pairing{}, fmt.Errorf("%w: %c", ErrDoublePair, pairs[i+1])
		}
		seen[a] = true
		seen[b] = true
		p.partner[a] = int8(b)
		p.partner[b] = int8(a)
		p.paired += 2
	}
	if full && p.paired != AlphabetSize {
		return Pairing{}, fmt.Errorf("%w: %d of %d symbols paired", ErrPartialReflect, p.paired, AlphabetSize)
	}
	return p, nil
}

// Substitute maps an alphabet index to its partner, or to itself when
// unpaired. Substitute is its own inverse.
func (p Pairing) Substitute(idx int) int {
	return int(p.partner[idx])
}

// PairedCount reports how many symbols have an explicit partner.
func (p Pairing) PairedCount() int {
	return p.paired
}
