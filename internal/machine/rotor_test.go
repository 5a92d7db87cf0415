package machine

import (
	"errors"
	"testing"
)

func TestNewRotorValidation(t *testing.T) {
	cases := []struct {
		name   string
		wiring string
		notch  byte
		want   error
	}{
		{name: "valid", wiring: Catalog[0].Wiring, notch: 'Q', want: nil},
		{name: "too short", wiring: "ABC", notch: 'Q', want: ErrNotPermutation},
		{name: "duplicate symbol", wiring: "AAMFLGDQVZNTOWYHXUSPEIBRCJ", notch: 'Q', want: ErrNotPermutation},
		{name: "symbol outside alphabet", wiring: "EKMFLGDQVZNTOWYHXUSPAIBRC1", notch: 'Q', want: ErrNotPermutation},
		{name: "bad notch", wiring: Catalog[0].Wiring, notch: '?', want: ErrBadNotch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRotor(tc.wiring, tc.notch, 0, 0)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRotorBackwardInvertsForward(t *testing.T) {
	for _, spec := range Catalog {
		for position := 0; position < AlphabetSize; position++ {
			rotor, err := NewRotor(spec.Wiring, spec.Notch, 3, position)
			if err != nil {
				t.Fatalf("rotor %s: %v", spec.Name, err)
			}
			for idx := 0; idx < AlphabetSize; idx++ {
				if got := rotor.Backward(rotor.Forward(idx)); got != idx {
					t.Fatalf("rotor %s position %d: backward(forward(%d)) = %d", spec.Name, position, idx, got)
				}
			}
		}
	}
}

func TestRotorPositionWrapsModulo(t *testing.T) {
	rotor, err := NewRotor(Catalog[0].Wiring, Catalog[0].Notch, 0, 25)
	if err != nil {
		t.Fatalf("rotor: %v", err)
	}
	rotor.Step()
	if got := rotor.Position(); got != 0 {
		t.Fatalf("position after wrap = %d, want 0", got)
	}

	rotor.SetPosition(-1)
	if got := rotor.Position(); got != 25 {
		t.Fatalf("position after SetPosition(-1) = %d, want 25", got)
	}
	rotor.SetPosition(26)
	if got := rotor.Position(); got != 0 {
		t.Fatalf("position after SetPosition(26) = %d, want 0", got)
	}
}

func TestRotorAtNotch(t *testing.T) {
	rotor, err := NewRotor(Catalog[0].Wiring, 'Q', 0, indexOf('Q'))
	if err != nil {
		t.Fatalf("rotor: %v", err)
	}
	if !rotor.AtNotch() {
		t.Fatal("rotor at Q should report AtNotch for notch Q")
	}
	rotor.Step()
	if rotor.AtNotch() {
		t.Fatal("rotor past notch should not report AtNotch")
	}
}

func TestRingOffsetShiftsLookupNotNotch(t *testing.T) {
	plain, err := NewRotor(Catalog[0].Wiring, 'Q', 0, 0)
	if err != nil {
		t.Fatalf("rotor: %v", err)
	}
	rung, err := NewRotor(Catalog[0].Wiring, 'Q', 1, 0)
	if err != nil {
		t.Fatalf("rotor: %v", err)
	}

	// A ring offset of 1 at position 0 must look up the same wiring slot as
	// no ring offset at position 1.
	shifted, err := NewRotor(Catalog[0].Wiring, 'Q', 0, 1)
	if err != nil {
		t.Fatalf("rotor: %v", err)
	}
	for idx := 0; idx < AlphabetSize; idx++ {
		if rung.Forward(idx) != shifted.Forward(idx) {
			t.Fatalf("ring 1 and position 1 disagree at %d", idx)
		}
	}

	// The notch condition tracks position only, never the ring.
	plain.SetPosition(indexOf('Q'))
	rung.SetPosition(indexOf('Q'))
	if !plain.AtNotch() || !rung.AtNotch() {
		t.Fatal("notch check must ignore ring setting")
	}
}
