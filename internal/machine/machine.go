package machine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRotorCount = errors.New("exactly three rotors are required")

// Settings describes one machine build. Slices are ordered in signal order:
// index 0 is the rightmost (fast) rotor the signal enters first, index 2 the
// leftmost (slow) rotor next to the reflector. Rings is optional; nil means
// all ring settings default to zero.
type Settings struct {
	Wirings   []string
	Notches   []byte
	Positions []int
	Rings     []int
	Plugboard string
	Reflector string
}

// Machine composes three rotors, a plugboard and a reflector into a single
// character transform. A Machine is stateful: every processed letter advances
// rotor positions, so one instance must never serve two messages concurrently
// and must be reset to a known start position before reuse.
type Machine struct {
	rotors    [3]*Rotor // signal order: right (fast), middle, left (slow)
	plugboard Pairing
	reflector Pairing
}

// New validates every part of the settings up front; Process never fails.
func New(s Settings) (*Machine, error) {
	if len(s.Wirings) != 3 || len(s.Notches) != 3 || len(s.Positions) != 3 {
		return nil, fmt.Errorf("%w: got %d wirings, %d notches, %d positions",
			ErrRotorCount, len(s.Wirings), len(s.Notches), len(s.Positions))
	}
	rings := s.Rings
	if rings == nil {
		rings = []int{0, 0, 0}
	}
	if len(rings) != 3 {
		return nil, fmt.Errorf("%w: got %d rings", ErrRotorCount, len(rings))
	}

	m := &Machine{}
	for i := 0; i < 3; i++ {
		rotor, err := NewRotor(s.Wirings[i], s.Notches[i], rings[i], s.Positions[i])
		if err != nil {
			return nil, fmt.Errorf("rotor %d: %w", i, err)
		}
		m.rotors[i] = rotor
	}

	plugboard, err := NewPlugboard(s.Plugboard)
	if err != nil {
		return nil, fmt.Errorf("plugboard: %w", err)
	}
	reflector, err := NewReflector(s.Reflector)
	if err != nil {
		return nil, fmt.Errorf("reflector: %w", err)
	}
	m.plugboard = plugboard
	m.reflector = reflector
	return m, nil
}

// Process transforms a message. Input is upper-cased; non-alphabetic
// characters pass through unchanged and do not advance rotor state. The
// transform is an involution: replaying Process from the same start positions
// maps ciphertext back to plaintext.
func (m *Machine) Process(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToUpper(text) {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(symbolAt(m.processLetter(int(r - 'A'))))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Encrypt is Process; the machine is reciprocal.
func (m *Machine) Encrypt(text string) string {
	return m.Process(text)
}

// Decrypt is Process; callers must reset positions to the encrypting start
// state first.
func (m *Machine) Decrypt(text string) string {
	return m.Process(text)
}

func (m *Machine) processLetter(idx int) int {
	idx = m.plugboard.Substitute(idx)
	m.step()

	for i := 0; i < 3; i++ {
		idx = m.rotors[i].Forward(idx)
	}
	idx = m.reflector.Substitute(idx)
	for i := 2; i >= 0; i-- {
		idx = m.rotors[i].Backward(idx)
	}

	return m.plugboard.Substitute(idx)
}

// step applies the odometer rule with the double-step anomaly. All notch
// decisions are taken against pre-step positions before any rotor moves: the
// fast rotor always advances, the middle rotor advances when the fast rotor
// sits at its notch, and a middle rotor sitting at its own notch drags both
// itself and the left rotor forward in the same cycle.
func (m *Machine) step() {
	stepMiddle := m.rotors[0].AtNotch() || m.rotors[1].AtNotch()
	stepLeft := m.rotors[1].AtNotch()

	m.rotors[0].Step()
	if stepMiddle {
		m.rotors[1].Step()
	}
	if stepLeft {
		m.rotors[2].Step()
	}
}

// Positions reports current rotor positions in signal order.
func (m *Machine) Positions() [3]int {
	return [3]int{m.rotors[0].Position(), m.rotors[1].Position(), m.rotors[2].Position()}
}

// SetPositions resets rotor positions in signal order, the required step
// before reusing a machine for another message.
func (m *Machine) SetPositions(positions [3]int) {
	for i, p := range positions {
		m.rotors[i].SetPosition(p)
	}
}
