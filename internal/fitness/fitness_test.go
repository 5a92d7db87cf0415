package fitness

import (
	"math"
	"strings"
	"testing"
)

func TestIndexOfCoincidenceBoundary(t *testing.T) {
	if got := IndexOfCoincidence(""); got != 0 {
		t.Fatalf("IoC of empty text = %v, want 0", got)
	}
	if got := IndexOfCoincidence("A"); got != 0 {
		t.Fatalf("IoC of single letter = %v, want 0", got)
	}
	if got := IndexOfCoincidence("?! 7"); got != 0 {
		t.Fatalf("IoC of letterless text = %v, want 0", got)
	}
}

func TestIndexOfCoincidenceKnownValues(t *testing.T) {
	// Uniform repetition: every pair matches.
	if got := IndexOfCoincidence("AAAA"); got != 1 {
		t.Fatalf("IoC of AAAA = %v, want 1", got)
	}
	// All distinct: no pair matches.
	if got := IndexOfCoincidence("ABCD"); got != 0 {
		t.Fatalf("IoC of ABCD = %v, want 0", got)
	}
	// AABB: 4 letters, matching ordered pairs 2+2 of 12.
	want := 4.0 / 12.0
	if got := IndexOfCoincidence("AABB"); math.Abs(got-want) > 1e-12 {
		t.Fatalf("IoC of AABB = %v, want %v", got, want)
	}
}

func TestIndexOfCoincidenceIgnoresCaseAndPunctuation(t *testing.T) {
	if IndexOfCoincidence("aabb") != IndexOfCoincidence("A a B-b!") {
		t.Fatal("IoC must operate on the upper-cased letters-only view")
	}
}

func TestFrequencyScoreEmptyTextTakesMaximalPenalty(t *testing.T) {
	if got := FrequencyScore(""); got != MaxChiSquare {
		t.Fatalf("chi-square of empty text = %v, want MaxChiSquare", got)
	}
	if got := FrequencyScore("... 42"); got != MaxChiSquare {
		t.Fatalf("chi-square of letterless text = %v, want MaxChiSquare", got)
	}
}

func TestFrequencyScorePrefersEnglishOverSkew(t *testing.T) {
	english := "IN THE HEART OF THE FOREST THERE WAS A HIDDEN VILLAGE WHERE PEOPLE LIVED IN PERFECT HARMONY"
	skewed := strings.Repeat("QZXJQZXJ", 12)
	if FrequencyScore(english) >= FrequencyScore(skewed) {
		t.Fatal("English text should have lower chi-square than rare-letter spam")
	}
}

func TestCountCommonTrigramsOverlap(t *testing.T) {
	if got := CountCommonTrigrams("THETHE"); got != 2 {
		t.Fatalf("trigram count of THETHE = %d, want 2", got)
	}
	// Overlapping occurrences of different trigrams are all counted: THE at
	// 0, HER at 1, and ENT at 4 share letters.
	if got := CountCommonTrigrams("THERENT"); got != 3 {
		t.Fatalf("trigram count of THERENT = %d, want 3", got)
	}
	if got := CountCommonTrigrams(""); got != 0 {
		t.Fatalf("trigram count of empty text = %d, want 0", got)
	}
}

func TestCountCommonTrigramsSpansNonLetters(t *testing.T) {
	// The letters-only view closes gaps, so "TH E" still contains THE.
	if got := CountCommonTrigrams("TH E"); got != 1 {
		t.Fatalf("trigram count of \"TH E\" = %d, want 1", got)
	}
}

func TestScoreDegradesGracefullyOnEmptyText(t *testing.T) {
	got := Score("")
	// IoC term contributes 0.4*(1-0.067), the other terms vanish.
	want := 0.4 * (1 - englishIoC)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("score of empty text = %v, want %v", got, want)
	}
}

func TestScoreRanksEnglishAboveNoise(t *testing.T) {
	english := "THERE WAS ALWAYS A SENSE OF PEACE AND CONTENTMENT IN THE VILLAGE FOR THE PEOPLE WHO LIVED THERE"
	noise := "XQZJVKWP YQZXJW KVQXZJ PWVKXQ ZJQXWV KPQZXJ WVKXQZ JPWQXV"
	if Score(english) <= Score(noise) {
		t.Fatalf("score(english)=%v should exceed score(noise)=%v", Score(english), Score(noise))
	}
}

func TestScoreIsHigherTheCloserIoCGetsToEnglish(t *testing.T) {
	// Same letters, different arrangement does not change IoC; compare a
	// flat distribution against a repetition-heavy one instead.
	flat := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	heavy := strings.Repeat("E", 26)
	if IndexOfCoincidence(heavy) < IndexOfCoincidence(flat) {
		t.Fatal("repetition-heavy text must have larger IoC")
	}
}
