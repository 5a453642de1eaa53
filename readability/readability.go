// Package readability computes text statistics for Portuguese essays:
// the Flesch reading-ease score, type/token ratio and hapax legomena.
// Syllables are counted with the syllables package.
package readability

import "errors"

// ErrEmptyText is returned when a text has no words or no sentences.
var ErrEmptyText = errors.New("text has no words or sentences")

// Flesch reading-ease coefficients.
const (
	fleschBase      = 206.835
	fleschSentences = 1.015
	fleschSyllables = 84.6
)

// Flesch returns 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words).
func Flesch(words, sentences, syllables int) (float64, error) {
	if words <= 0 || sentences <= 0 {
		return 0, ErrEmptyText
	}
	w := float64(words)
	return fleschBase - fleschSentences*(w/float64(sentences)) - fleschSyllables*(float64(syllables)/w), nil
}

// LexicalDiversity is the type/token ratio: distinct words over total
// words. It is 0 for an empty list.
func LexicalDiversity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

// HapaxLegomena counts the tokens that occur exactly once.
func HapaxLegomena(tokens []string) int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	n := 0
	for _, c := range counts {
		if c == 1 {
			n++
		}
	}
	return n
}
