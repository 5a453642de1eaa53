package syllables

import "strings"

// Decision records a rule whose pattern matched a segment.
type Decision struct {
	// Segment is the piece of the word the rule was tried on.
	Segment string
	// Rule is the index into Rules().
	Rule int
	// At is the candidate cut position in characters.
	At int
	// RejectedBy names the exclusion that vetoed the cut; empty when the
	// cut was taken.
	RejectedBy string
	// Depth is the recursion level of Segment; the whole word is 0.
	Depth int
}

// findSplit tries the rules in priority order against s and returns the
// first accepted cut. Only the leftmost occurrence of each pattern is
// considered; a vetoed match moves on to the next rule.
func findSplit(s Segment, depth int, trace func(Decision)) (first, second Segment, ok bool) {
	if s.Len() < 2 {
		return Segment{}, Segment{}, false
	}
	for i, rule := range rules {
		idx := strings.Index(string(s.Types), string(rule.Pattern))
		if idx < 0 {
			continue
		}
		at := idx + rule.Offset
		first, second = s.Cut(at)
		name, veto := rejected(first, second)
		if trace != nil {
			trace(Decision{Segment: s.Word, Rule: i, At: at, RejectedBy: name, Depth: depth})
		}
		if veto {
			continue
		}
		return first, second, true
	}
	return Segment{}, Segment{}, false
}

// Split partitions s into syllables. Every accepted cut leaves two
// non-empty, strictly shorter halves, so recursion depth is bounded by
// the segment length.
func Split(s Segment) []Segment {
	return split(s, 0, nil)
}

func split(s Segment, depth int, trace func(Decision)) []Segment {
	first, second, ok := findSplit(s, depth, trace)
	if !ok {
		return []Segment{s}
	}
	return append(split(first, depth+1, trace), split(second, depth+1, trace)...)
}

// Syllabify splits a lowercase word into syllables. Joining the result
// gives back word exactly. The empty word yields a single empty syllable.
//
// Syllabify does not normalize its input; see NormalizeWord.
func Syllabify(word string) []string {
	return words(Split(NewSegment(word)))
}

// Count returns the number of syllables in word.
func Count(word string) int {
	return len(Split(NewSegment(word)))
}

// Trace syllabifies word and also returns every rule decision taken on the
// way, in evaluation order.
func Trace(word string) ([]string, []Decision) {
	var steps []Decision
	segs := split(NewSegment(word), 0, func(d Decision) {
		steps = append(steps, d)
	})
	return words(segs), steps
}

func words(segs []Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Word
	}
	return out
}
