package machine

import "testing"

func TestCatalogEntriesAreValidRotors(t *testing.T) {
	if len(Catalog) != 5 {
		t.Fatalf("catalog size = %d, want 5", len(Catalog))
	}
	for _, spec := range Catalog {
		if _, err := NewRotor(spec.Wiring, spec.Notch, 0, 0); err != nil {
			t.Fatalf("rotor %s: %v", spec.Name, err)
		}
	}
}

func TestNamedReflectorsAreFullPairings(t *testing.T) {
	for name, pairs := range Reflectors {
		reflector, err := NewReflector(pairs)
		if err != nil {
			t.Fatalf("reflector %s: %v", name, err)
		}
		if reflector.PairedCount() != AlphabetSize {
			t.Fatalf("reflector %s pairs %d symbols", name, reflector.PairedCount())
		}
	}
}

func TestLookupRotor(t *testing.T) {
	spec, ok := LookupRotor("IV")
	if !ok || spec.Notch != 'J' {
		t.Fatalf("lookup IV = %+v, %v", spec, ok)
	}
	if _, ok := LookupRotor("VIII"); ok {
		t.Fatal("lookup VIII should miss")
	}
}
