// Package essay reads and writes the plain-text essay files that make up
// the corpus, and extracts them from annotated XML sources.
//
// An essay file looks like:
//
//	# score: 9,5
//	Title of the essay
//	First paragraph.
//	Second paragraph.
package essay

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

var (
	ErrMissingScore = errors.New("essay has no score line")
	ErrInvalidScore = errors.New("invalid score")
)

const scorePrefix = "# score"

// reBracket removes editorial markers such as "[Tema livre]" from titles.
var reBracket = regexp.MustCompile(`\[(.+)\]`)

// Essay is a single scored essay.
type Essay struct {
	// ID is the BLAKE3 digest of the body; equal bodies share an ID.
	ID string
	// Source is the file the essay was read from, if any.
	Source string
	// Score is the normalized score (multiple of 50).
	Score int
	Title string
	// Paragraphs holds the non-empty body lines in order.
	Paragraphs []string
}

// Body returns the paragraphs joined by newlines.
func (e Essay) Body() string {
	return strings.Join(e.Paragraphs, "\n")
}

// Text returns the paragraphs joined by spaces, ready for sentence
// splitting.
func (e Essay) Text() string {
	return strings.Join(e.Paragraphs, " ")
}

// Digest returns the hex BLAKE3 digest of body.
func Digest(body string) string {
	sum := blake3.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// New builds an essay and fills in its ID.
func New(source string, score int, title string, paragraphs []string) Essay {
	e := Essay{Source: source, Score: score, Title: title, Paragraphs: paragraphs}
	e.ID = Digest(e.Body())
	return e
}

// Parse reads an essay in the text format. The score line may appear on
// any line; the title is always the second line unless that line is the
// score.
func Parse(r io.Reader, source string) (Essay, error) {
	var (
		score      = -1
		title      string
		paragraphs []string
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for i := 0; sc.Scan(); i++ {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, scorePrefix):
			parts := strings.Split(line, ":")
			if len(parts) < 2 {
				return Essay{}, fmt.Errorf("%s: %w: %q", source, ErrInvalidScore, line)
			}
			s, err := FormatScore(strings.TrimSpace(parts[1]))
			if err != nil {
				return Essay{}, fmt.Errorf("%s: %w", source, err)
			}
			score = NormalizeScore(s)
		case i == 1:
			title = strings.TrimSpace(reBracket.ReplaceAllString(line, ""))
		case line != "":
			paragraphs = append(paragraphs, line)
		}
	}
	if err := sc.Err(); err != nil {
		return Essay{}, fmt.Errorf("read %s: %w", source, err)
	}
	if score < 0 {
		return Essay{}, fmt.Errorf("%s: %w", source, ErrMissingScore)
	}
	return New(source, score, title, paragraphs), nil
}

// WriteTo writes e in the text format.
func (e Essay) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d\n", scorePrefix, e.Score)
	b.WriteString(e.Title)
	b.WriteByte('\n')
	for _, p := range e.Paragraphs {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// FormatScore converts a raw score to an integer on the 0-1000 scale.
// Decimal scores use a comma or a dot: "9,5" and "9.5" both give 950.
func FormatScore(raw string) (int, error) {
	s, mult := raw, 1
	switch {
	case strings.Contains(s, ","):
		s, mult = strings.ReplaceAll(s, ",", ""), 10
	case strings.Contains(s, "."):
		s, mult = strings.ReplaceAll(s, ".", ""), 10
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	return n * mult, nil
}

// NormalizeScore snaps score onto the 50-point grid used by the corpus
// labels. Remainders from 20 to 60 round to 50, above 60 round up to the
// next hundred and below 20 round down.
func NormalizeScore(score int) int {
	value := score % 100
	if value == 50 || value == 0 {
		return score
	}
	switch {
	case value >= 20 && value <= 60:
		return score + 50 - value
	case value > 60:
		return score + 100 - value
	default:
		return score - value
	}
}
