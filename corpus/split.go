// Package corpus builds the train/dev/test splits of the essay corpus,
// persists them and describes them.
package corpus

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/essay-br/syllables/essay"
)

const (
	Train = "train"
	Dev   = "dev"
	Test  = "test"
)

// Names lists the split names in canonical order.
var Names = []string{Train, Dev, Test}

// DefaultSeed reproduces the published splits.
const DefaultSeed = 230

var (
	ErrBadFractions = errors.New("split fractions must be non-negative and add up to 1.0")
	ErrNoSplit      = errors.New("no such split")
)

// Fractions are the relative sizes of the three splits.
type Fractions struct {
	Train float64 `json:"train"`
	Dev   float64 `json:"dev"`
	Test  float64 `json:"test"`
}

// DefaultFractions is the 80/10/10 split.
var DefaultFractions = Fractions{Train: 0.8, Dev: 0.1, Test: 0.1}

func (f Fractions) Validate() error {
	if f.Train < 0 || f.Dev < 0 || f.Test < 0 || math.Abs(f.Train+f.Dev+f.Test-1) > 1e-9 {
		return fmt.Errorf("%w: got %g, %g, %g", ErrBadFractions, f.Train, f.Dev, f.Test)
	}
	return nil
}

// Splits holds the three partitions of a corpus.
type Splits struct {
	Train []essay.Essay
	Dev   []essay.Essay
	Test  []essay.Essay
}

// Get returns the split called name.
func (s *Splits) Get(name string) ([]essay.Essay, error) {
	switch name {
	case Train:
		return s.Train, nil
	case Dev:
		return s.Dev, nil
	case Test:
		return s.Test, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoSplit, name)
	}
}

func (s *Splits) set(name string, essays []essay.Essay) {
	switch name {
	case Train:
		s.Train = essays
	case Dev:
		s.Dev = essays
	case Test:
		s.Test = essays
	}
}

// Len returns the total number of essays across all splits.
func (s *Splits) Len() int {
	return len(s.Train) + len(s.Dev) + len(s.Test)
}

// SplitStratified partitions essays so that each split keeps roughly the
// score distribution of the whole corpus. Each score group is shuffled
// with a PRNG seeded from seed and cut by the fractions, so the same
// input and seed always give the same splits.
func SplitStratified(essays []essay.Essay, f Fractions, seed uint64) (*Splits, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	groups := make(map[int][]essay.Essay)
	for _, e := range essays {
		groups[e.Score] = append(groups[e.Score], e)
	}
	scores := make([]int, 0, len(groups))
	for s := range groups {
		scores = append(scores, s)
	}
	sort.Ints(scores)

	rng := rand.New(rand.NewPCG(seed, seed))
	out := &Splits{}
	for _, score := range scores {
		g := groups[score]
		rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })

		n := len(g)
		nTrain := int(math.Round(float64(n) * f.Train))
		nDev := int(math.Round(float64(n) * f.Dev))
		if nTrain+nDev > n {
			nDev = n - nTrain
		}
		out.Train = append(out.Train, g[:nTrain]...)
		out.Dev = append(out.Dev, g[nTrain:nTrain+nDev]...)
		out.Test = append(out.Test, g[nTrain+nDev:]...)
	}

	if out.Len() != len(essays) {
		return nil, fmt.Errorf("split lost essays: %d in, %d out", len(essays), out.Len())
	}
	return out, nil
}
