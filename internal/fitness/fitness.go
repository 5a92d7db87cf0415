// Package fitness scores candidate plaintexts by how English-like they look.
// Every statistic is computed over an upper-cased, letters-only view of the
// input, so degenerate candidates degrade to sentinel values instead of
// errors and the search loop never has to handle a scoring failure.
package fitness

import (
	"math"
	"strings"
)

// englishFrequencies is the expected percentage of each letter A-Z in
// representative English text.
var englishFrequencies = [26]float64{
	8.2, 1.5, 2.8, 4.3, 13, 2.2, 2.0, 6.1, 7.0, 0.15,
	0.77, 4.0, 2.4, 6.7, 7.5, 1.9, 0.095, 6.0, 6.3, 9.1,
	2.8, 0.98, 2.4, 0.15, 2.0, 0.074,
}

// commonTrigrams are frequent English three-letter sequences counted with
// overlap allowed.
var commonTrigrams = []string{
	"THE", "AND", "ING", "ENT", "ION", "HER", "FOR", "THA", "NTH", "INT",
}

// englishIoC is the coincidence index of typical English text.
const englishIoC = 0.067

// MaxChiSquare is the frequency score of a candidate with no letters: there
// is no distribution to compare, so the candidate takes the maximal penalty
// rather than raising an error.
const MaxChiSquare = math.MaxFloat64

// lettersOnly upper-cases text and strips everything outside A-Z.
func lettersOnly(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToUpper(text) {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

func letterFrequencies(letters string) [26]int {
	var freq [26]int
	for i := 0; i < len(letters); i++ {
		freq[letters[i]-'A']++
	}
	return freq
}

// IndexOfCoincidence measures the probability that two randomly chosen
// letters of the text are identical. Genuine English averages around 0.067.
// Texts with fewer than two letters score 0.
func IndexOfCoincidence(text string) float64 {
	letters := lettersOnly(text)
	n := len(letters)
	if n <= 1 {
		return 0
	}

	freq := letterFrequencies(letters)
	sum := 0.0
	for _, f := range freq {
		sum += float64(f) * float64(f-1)
	}
	return sum / (float64(n) * float64(n-1))
}

// FrequencyScore is the chi-square statistic of the observed letter
// distribution (in percent) against the English table. Lower is better. An
// empty candidate returns MaxChiSquare.
func FrequencyScore(text string) float64 {
	letters := lettersOnly(text)
	n := len(letters)
	if n == 0 {
		return MaxChiSquare
	}

	freq := letterFrequencies(letters)
	chiSquare := 0.0
	for i := 0; i < 26; i++ {
		observed := float64(freq[i]) / float64(n) * 100
		expected := englishFrequencies[i]
		chiSquare += (observed - expected) * (observed - expected) / expected
	}
	return chiSquare
}

// CountCommonTrigrams totals occurrences of the common trigrams, overlap
// allowed: after a hit, scanning resumes at the very next position.
func CountCommonTrigrams(text string) int {
	letters := lettersOnly(text)
	count := 0
	for _, trigram := range commonTrigrams {
		from := 0
		for {
			i := strings.Index(letters[from:], trigram)
			if i < 0 {
				break
			}
			count++
			from += i + 1
		}
	}
	return count
}

// Score combines the three statistics into one scalar, higher is better.
// The combination is weighted toward distribution shape; nothing clamps the
// result, so values slightly above 1 are possible.
func Score(text string) float64 {
	letters := lettersOnly(text)

	iocFitness := 1.0 - math.Abs(englishIoC-IndexOfCoincidence(letters))
	freqFitness := 1.0 / (1.0 + FrequencyScore(letters))
	trigramFitness := 0.0
	if len(letters) > 0 {
		trigramFitness = float64(CountCommonTrigrams(letters)) / float64(len(letters))
	}

	return 0.4*iocFitness + 0.4*freqFitness + 0.2*trigramFitness
}
