package syllables

// SplitRule cuts a segment Offset characters after the leftmost occurrence
// of Pattern in its type line. 0 < Offset < len(Pattern).
type SplitRule struct {
	Pattern TypeLine
	Offset  int
}

// rules is the split table in priority order. The first rule whose
// candidate cut survives every exclusion wins at each recursion level.
var rules = [...]SplitRule{
	{"VV", 1},
	{"cccc", 2},
	{"xcc", 1},
	{"ccx", 2},
	{"csc", 2},
	{"xc", 1},
	{"cc", 1},
	{"vcc", 2},
	{"Vcc", 2},
	{"sc", 1},
	{"cs", 1},
	{"Vc", 1},
	{"vc", 1},
	{"Vs", 1},
	{"vs", 1},
}

// Rules returns a copy of the split table in priority order.
func Rules() []SplitRule {
	out := make([]SplitRule, len(rules))
	copy(out, rules[:])
	return out
}

// Exclusion names a predicate that vetoes a candidate cut.
type Exclusion struct {
	Name   string
	Reject func(first, second Segment) bool
}

// degenerate type lines have no vowel and cannot stand alone as a syllable.
var degenerate = map[TypeLine]bool{"c": true, "s": true, "x": true, "cs": true}

// exclusions apply uniformly to every rule, in this order.
var exclusions = [...]Exclusion{
	{"degenerate", func(first, second Segment) bool {
		return degenerate[first.Types] || degenerate[second.Types]
	}},
	{"liquid cluster", func(first, second Segment) bool {
		r := second.firstRune()
		return first.Types.Last() == Consonant && (r == 'l' || r == 'r')
	}},
	{"double l", func(first, second Segment) bool {
		return first.lastRune() == 'l' && second.lastRune() == 'l'
	}},
	{"double r", func(first, second Segment) bool {
		return first.lastRune() == 'r' && second.lastRune() == 'r'
	}},
	// Compares against the end of second, not its start, so only cuts
	// whose right half ends in h are vetoed. "ac|ha" is accepted.
	{"ch digraph", func(first, second Segment) bool {
		return first.lastRune() == 'c' && second.lastRune() == 'h'
	}},
}

// Exclusions returns the cut exclusions in evaluation order.
func Exclusions() []Exclusion {
	out := make([]Exclusion, len(exclusions))
	copy(out, exclusions[:])
	return out
}

// rejected reports the first exclusion that vetoes the cut, if any.
func rejected(first, second Segment) (string, bool) {
	for _, e := range exclusions {
		if e.Reject(first, second) {
			return e.Name, true
		}
	}
	return "", false
}
