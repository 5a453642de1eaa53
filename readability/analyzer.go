package readability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/essay-br/syllables"
	"github.com/essay-br/syllables/internal/logging"
)

var log = logging.ForComponent("readability")

// Metrics holds the statistics for a single text.
type Metrics struct {
	Sentences        int     `json:"sentences"`
	Words            int     `json:"words"`
	Tokens           int     `json:"tokens"`
	Syllables        int     `json:"syllables"`
	Flesch           float64 `json:"flesch"`
	LexicalDiversity float64 `json:"lexical_diversity"`
	Hapax            int     `json:"hapax"`
}

// Analyzer computes Metrics. Syllable counts are memoized per normalized
// word in a fixed-size LRU cache. An Analyzer is safe for concurrent use.
type Analyzer struct {
	cache *lru.Cache[string, int]
}

// NewAnalyzer returns an Analyzer caching up to cacheSize words.
func NewAnalyzer(cacheSize int) (*Analyzer, error) {
	c, err := lru.New[string, int](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("syllable cache: %w", err)
	}
	return &Analyzer{cache: c}, nil
}

// Syllables returns the syllable count of a raw word token. The token is
// normalized first; a token with no letters counts as one syllable.
func (a *Analyzer) Syllables(word string) int {
	w := syllables.NormalizeWord(word)
	if n, ok := a.cache.Get(w); ok {
		return n
	}
	n := syllables.Count(w)
	a.cache.Add(w, n)
	return n
}

// Analyze computes the metrics of text. It returns ErrEmptyText when the
// text has no words.
func (a *Analyzer) Analyze(text string) (Metrics, error) {
	var (
		m      Metrics
		words  []string
		tokens []string
	)
	sentences := SplitSentences(text)
	for _, s := range sentences {
		tokens = append(tokens, Tokens(s)...)
		words = append(words, Words(s)...)
	}
	m.Sentences = len(sentences)
	m.Words = len(words)
	m.Tokens = len(tokens)
	for _, w := range words {
		m.Syllables += a.Syllables(w)
	}

	f, err := Flesch(m.Words, m.Sentences, m.Syllables)
	if err != nil {
		return m, err
	}
	m.Flesch = f
	m.LexicalDiversity = LexicalDiversity(words)
	m.Hapax = HapaxLegomena(tokens)
	return m, nil
}

// Report aggregates the metrics of many texts.
type Report struct {
	// Texts holds one entry per input text, in input order. Empty texts
	// have zero Metrics.
	Texts []Metrics `json:"texts"`
	// Skipped counts the empty texts left out of the means.
	Skipped              int     `json:"skipped"`
	MeanFlesch           float64 `json:"mean_flesch"`
	MeanLexicalDiversity float64 `json:"mean_lexical_diversity"`
	MeanHapax            float64 `json:"mean_hapax"`
}

// AnalyzeCorpus runs Analyze over texts on a pool of workers and averages
// the results. It stops early when ctx is cancelled.
func (a *Analyzer) AnalyzeCorpus(ctx context.Context, texts []string, workers int) (*Report, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Metrics, len(texts))
	empty := make([]bool, len(texts))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				m, err := a.Analyze(texts[idx])
				if errors.Is(err, ErrEmptyText) {
					empty[idx] = true
					continue
				}
				results[idx] = m
			}
		}()
	}

feed:
	for i := range texts {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &Report{Texts: results}
	for i, m := range results {
		if empty[i] {
			r.Skipped++
			continue
		}
		r.MeanFlesch += m.Flesch
		r.MeanLexicalDiversity += m.LexicalDiversity
		r.MeanHapax += float64(m.Hapax)
	}
	if n := float64(len(texts) - r.Skipped); n > 0 {
		r.MeanFlesch /= n
		r.MeanLexicalDiversity /= n
		r.MeanHapax /= n
	}
	log.Debug("corpus analyzed", "texts", len(texts), "skipped", r.Skipped, "workers", workers)
	return r, nil
}
