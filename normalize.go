package syllables

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// reWord matches a run of letters, including combining marks so that
// decomposed accents stay attached to their base letter.
var reWord = regexp.MustCompile(`\p{L}[\p{L}\p{M}]*`)

// Words returns the letter-only tokens of text in order of appearance.
// Digits, punctuation and whitespace separate tokens and are dropped.
func Words(text string) []string {
	return reWord.FindAllString(text, -1)
}

// NormalizeWord prepares a raw token for Syllabify: it composes the
// token to NFC, lowercases it with Portuguese casing rules and removes
// every character that is not a letter.
//
// Composition matters because the classifier only knows precomposed
// vowels: "á" must become "á" to classify as a strong vowel.
func NormalizeWord(s string) string {
	s = norm.NFC.String(s)
	// cases.Caser is stateful; one per call keeps this safe for goroutines.
	s = cases.Lower(language.BrazilianPortuguese).String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
}

// IsNormalized reports whether word already satisfies the input
// precondition of Syllabify.
func IsNormalized(word string) bool {
	return NormalizeWord(word) == word
}
