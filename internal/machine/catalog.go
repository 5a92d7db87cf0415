package machine

// RotorSpec names one catalog rotor: its wiring permutation and the symbol at
// which it forces the next rotor to advance.
type RotorSpec struct {
	Name   string
	Wiring string
	Notch  byte
}

// Catalog is the historical five-rotor table, consumed read-only by machine
// construction and by both search strategies.
var Catalog = []RotorSpec{
	{Name: "I", Wiring: "EKMFLGDQVZNTOWYHXUSPAIBRCJ", Notch: 'Q'},
	{Name: "II", Wiring: "AJDKSIRUXBLHWTMCQGZNPYFVOE", Notch: 'E'},
	{Name: "III", Wiring: "BDFHJLCPRTXVZNYEIWGAKMUSQO", Notch: 'V'},
	{Name: "IV", Wiring: "ESOVPZJAYQUIRHXLNFTGKDCMWB", Notch: 'J'},
	{Name: "V", Wiring: "VZBRGITYUPSDNHLXAWMJQOFECK", Notch: 'Z'},
}

// Reflector and plugboard defaults, as pair-concatenated strings.
const (
	ReflectorB       = "YRUHQSLDPXNGOKMIEBFZCWVJAT"
	ReflectorC       = "FVPJIAOYEDRZXWGCTKUQSBNMHL"
	DefaultPlugboard = "AZBYCXDWEVFU"
)

// Reflectors maps reflector names to their pair strings.
var Reflectors = map[string]string{
	"B": ReflectorB,
	"C": ReflectorC,
}

// LookupRotor finds a catalog rotor by name.
func LookupRotor(name string) (RotorSpec, bool) {
	for _, spec := range Catalog {
		if spec.Name == name {
			return spec, true
		}
	}
	return RotorSpec{}, false
}
