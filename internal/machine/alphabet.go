package machine

// Alphabet is the canonical ordered symbol set. All index arithmetic in this
// package is over positions in this string.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const AlphabetSize = len(Alphabet)

// indexOf returns the alphabet index of c, or -1 when c is outside A-Z.
func indexOf(c byte) int {
	if c < 'A' || c > 'Z' {
		return -1
	}
	return int(c - 'A')
}

func symbolAt(idx int) byte {
	return Alphabet[((idx%AlphabetSize)+AlphabetSize)%AlphabetSize]
}
