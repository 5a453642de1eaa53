package syllables

// Category is the phonetic class of a single character.
// The rune value doubles as the character's code in a TypeLine.
type Category rune

const (
	StrongVowel Category = 'V'
	WeakVowel   Category = 'v'
	X           Category = 'x'
	S           Category = 's'
	Consonant   Category = 'c'
)

// strongVowels and weakVowels are the only characters that classify as
// vowels. Lookup is case-sensitive: 'A', 'â', 'ã', 'õ', 'ê' are consonants.
var (
	strongVowels = map[rune]bool{
		'a': true, 'á': true,
		'e': true, 'é': true,
		'o': true, 'ó': true,
		'í': true, 'ú': true,
	}
	weakVowels = map[rune]bool{'i': true, 'u': true, 'ü': true}
)

// Classify returns the category of r. It is total: anything that is not a
// known vowel, 'x' or 's' is a Consonant.
func Classify(r rune) Category {
	switch {
	case strongVowels[r]:
		return StrongVowel
	case weakVowels[r]:
		return WeakVowel
	case r == 'x':
		return X
	case r == 's':
		return S
	default:
		return Consonant
	}
}

// String returns the single-letter code of c.
func (c Category) String() string {
	return string(rune(c))
}

// Name returns a human-readable name for c.
func (c Category) Name() string {
	switch c {
	case StrongVowel:
		return "strong vowel"
	case WeakVowel:
		return "weak vowel"
	case X:
		return "x"
	case S:
		return "s"
	default:
		return "consonant"
	}
}
