package corpus

import (
	"math"
	"sort"

	"github.com/essay-br/syllables/essay"
	"github.com/essay-br/syllables/readability"
)

// Summary describes a distribution of counts.
type Summary struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
}

// ScoreCount is the number of essays with a given score.
type ScoreCount struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

// Stats describes a set of essays.
type Stats struct {
	Essays            int          `json:"essays"`
	Sentences         int          `json:"sentences"`
	Tokens            int          `json:"tokens"`
	SentencesPerEssay Summary      `json:"sentences_per_essay"`
	TokensPerEssay    Summary      `json:"tokens_per_essay"`
	TokensPerSentence float64      `json:"tokens_per_sentence"`
	Scores            []ScoreCount `json:"scores"`
}

// Describe counts sentences and tokens per essay and tallies scores.
// Scores are listed in ascending order.
func Describe(essays []essay.Essay) Stats {
	st := Stats{Essays: len(essays)}
	sentences := make([]float64, len(essays))
	tokens := make([]float64, len(essays))
	counts := make(map[int]int)

	for i, e := range essays {
		ss := readability.SplitSentences(e.Text())
		n := 0
		for _, s := range ss {
			n += len(readability.Tokens(s))
		}
		sentences[i] = float64(len(ss))
		tokens[i] = float64(n)
		st.Sentences += len(ss)
		st.Tokens += n
		counts[e.Score]++
	}

	st.SentencesPerEssay = summarize(sentences)
	st.TokensPerEssay = summarize(tokens)
	if st.Sentences > 0 {
		st.TokensPerSentence = float64(st.Tokens) / float64(st.Sentences)
	}
	for score, c := range counts {
		st.Scores = append(st.Scores, ScoreCount{Score: score, Count: c})
	}
	sort.Slice(st.Scores, func(i, j int) bool { return st.Scores[i].Score < st.Scores[j].Score })
	return st
}

// summarize returns the mean, population standard deviation and median.
func summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return Summary{Mean: mean, Std: math.Sqrt(sq / float64(len(xs))), Median: median}
}
