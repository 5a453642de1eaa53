package syllables

import (
	"strings"
	"unicode/utf8"
)

// TypeLine holds one Category code per character of a word, in order.
// Codes are ASCII, so byte i of a TypeLine describes character i of the word.
type TypeLine string

// BuildTypeLine maps Classify over the characters of word.
// An invalid UTF-8 byte is a character of its own and classifies as Consonant.
func BuildTypeLine(word string) TypeLine {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		b.WriteRune(rune(Classify(r)))
	}
	return TypeLine(b.String())
}

// Last returns the category of the final character, or 0 when t is empty.
func (t TypeLine) Last() Category {
	if t == "" {
		return 0
	}
	return Category(t[len(t)-1])
}

// Segment is a contiguous piece of a word together with its type line.
type Segment struct {
	Word  string
	Types TypeLine
}

// NewSegment returns the root segment for word.
func NewSegment(word string) Segment {
	return Segment{Word: word, Types: BuildTypeLine(word)}
}

// Len returns the number of characters in s.
func (s Segment) Len() int {
	return len(s.Types)
}

// Cut splits s before character p. Both halves keep their type lines, so
// no reclassification happens while recursing.
func (s Segment) Cut(p int) (Segment, Segment) {
	off := byteOffset(s.Word, p)
	return Segment{Word: s.Word[:off], Types: s.Types[:p]},
		Segment{Word: s.Word[off:], Types: s.Types[p:]}
}

func (s Segment) firstRune() rune {
	r, _ := utf8.DecodeRuneInString(s.Word)
	return r
}

func (s Segment) lastRune() rune {
	r, _ := utf8.DecodeLastRuneInString(s.Word)
	return r
}

func (s Segment) String() string {
	return s.Word
}

// byteOffset returns the byte index of character n in w, counting an
// invalid byte as one character the same way a range loop does.
func byteOffset(w string, n int) int {
	off := 0
	for i := 0; i < n && off < len(w); i++ {
		_, size := utf8.DecodeRuneInString(w[off:])
		off += size
	}
	return off
}
