package readability

import (
	"regexp"
	"strings"
)

var (
	// reSentenceEnd matches terminal punctuation, optional closing quotes
	// or brackets, and the whitespace that follows.
	reSentenceEnd = regexp.MustCompile(`[.!?…;]+["'”»)\]]*(\s+|$)|\n\s*\n`)
	reToken       = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+|[^\p{L}\p{M}\p{N}_\s]`)
	reWordToken   = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
)

// SplitSentences cuts text after runs of terminal punctuation and at blank
// lines. Sentences are trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range reSentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Tokens splits a sentence into word tokens and single punctuation marks.
func Tokens(sentence string) []string {
	return reToken.FindAllString(sentence, -1)
}

// Words returns only the word tokens of a sentence: letters, digits and
// underscores.
func Words(sentence string) []string {
	return reWordToken.FindAllString(sentence, -1)
}
