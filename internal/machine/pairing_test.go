package machine

import (
	"errors"
	"testing"
)

func TestNewPlugboardValidation(t *testing.T) {
	cases := []struct {
		name  string
		pairs string
		want  error
	}{
		{name: "empty is valid", pairs: "", want: nil},
		{name: "historical default", pairs: DefaultPlugboard, want: nil},
		{name: "odd length", pairs: "AZB", want: ErrOddPairString},
		{name: "symbol outside alphabet", pairs: "A1", want: ErrBadPairSymbol},
		{name: "lowercase rejected", pairs: "az", want: ErrBadPairSymbol},
		{name: "self pair", pairs: "AA", want: ErrSelfPair},
		{name: "symbol reused", pairs: "AZAY", want: ErrDoublePair},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlugboard(tc.pairs)
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

func TestNewReflectorRequiresFullPairing(t *testing.T) {
	if _, err := NewReflector("AZBY"); !errors.Is(err, ErrPartialReflect) {
		t.Fatalf("got %v, want %v", err, ErrPartialReflect)
	}

	reflector, err := NewReflector(ReflectorB)
	if err != nil {
		t.Fatalf("reflector B: %v", err)
	}
	if reflector.PairedCount() != AlphabetSize {
		t.Fatalf("paired count = %d, want %d", reflector.PairedCount(), AlphabetSize)
	}
	for idx := 0; idx < AlphabetSize; idx++ {
		if reflector.Substitute(idx) == idx {
			t.Fatalf("reflector has fixed point at %c", symbolAt(idx))
		}
	}
}

func TestPairingIsInvolution(t *testing.T) {
	plugboard, err := NewPlugboard(DefaultPlugboard)
	if err != nil {
		t.Fatalf("plugboard: %v", err)
	}
	for idx := 0; idx < AlphabetSize; idx++ {
		if got := plugboard.Substitute(plugboard.Substitute(idx)); got != idx {
			t.Fatalf("substitute twice of %c = %c, want identity", symbolAt(idx), symbolAt(got))
		}
	}
}

func TestPlugboardUnpairedSymbolsMapToThemselves(t *testing.T) {
	plugboard, err := NewPlugboard("AZ")
	if err != nil {
		t.Fatalf("plugboard: %v", err)
	}
	if got := plugboard.Substitute(indexOf('A')); got != indexOf('Z') {
		t.Fatalf("A -> %c, want Z", symbolAt(got))
	}
	if got := plugboard.Substitute(indexOf('M')); got != indexOf('M') {
		t.Fatalf("M -> %c, want M", symbolAt(got))
	}
}
