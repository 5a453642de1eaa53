// Package syllables splits Portuguese words into syllables using a
// phonetic character classification and an ordered table of structural
// split rules applied recursively.
//
// The engine is pure and holds no state: Syllabify may be called from any
// number of goroutines. Input is expected to be a single lowercase word;
// NormalizeWord and Words help callers get there from raw text.
package syllables

// Result describes how a single word was syllabified.
type Result struct {
	// Word is the input as given to Syllabify.
	Word string
	// Types is the word's type line.
	Types TypeLine
	// Syllables is the ordered partition of Word.
	Syllables []string
}

// Analyze syllabifies word and returns it along with its type line.
func Analyze(word string) Result {
	seg := NewSegment(word)
	return Result{
		Word:      word,
		Types:     seg.Types,
		Syllables: words(Split(seg)),
	}
}

// AnalyzeText normalizes and syllabifies every word token in text.
func AnalyzeText(text string) []Result {
	tokens := Words(text)
	out := make([]Result, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, Analyze(NormalizeWord(tok)))
	}
	return out
}
