package corpus

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ulikunitz/xz"

	"github.com/essay-br/syllables/essay"
	"github.com/essay-br/syllables/internal/logging"
)

var log = logging.ForComponent("corpus")

var header = []string{"id", "source", "score", "title", "essay"}

// WriteCSV writes essays with a header row. The essay column holds the
// paragraphs as a JSON array.
func WriteCSV(w io.Writer, essays []essay.Essay) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range essays {
		body, err := json.Marshal(e.Paragraphs)
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.ID, err)
		}
		if err := cw.Write([]string{e.ID, e.Source, strconv.Itoa(e.Score), e.Title, string(body)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads essays written by WriteCSV.
func ReadCSV(r io.Reader) ([]essay.Essay, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	essays := make([]essay.Essay, 0, len(rows)-1)
	for i, row := range rows[1:] {
		score, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %q", i+2, essay.ErrInvalidScore, row[2])
		}
		var paragraphs []string
		if err := json.Unmarshal([]byte(row[4]), &paragraphs); err != nil {
			return nil, fmt.Errorf("row %d: essay column: %w", i+2, err)
		}
		essays = append(essays, essay.Essay{
			ID:         row[0],
			Source:     row[1],
			Score:      score,
			Title:      row[3],
			Paragraphs: paragraphs,
		})
	}
	return essays, nil
}

func splitPath(dir, name string, compress bool) string {
	p := filepath.Join(dir, name+".csv")
	if compress {
		p += ".xz"
	}
	return p
}

// SaveSplits writes train.csv, dev.csv and test.csv into dir, xz
// compressed (".csv.xz") when compress is set.
func SaveSplits(dir string, s *Splits, compress bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, name := range Names {
		essays, _ := s.Get(name)
		path := splitPath(dir, name, compress)
		if err := saveSplit(path, essays, compress); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		log.Info("split saved", "split", name, "path", path, "essays", len(essays))
	}
	return nil
}

func saveSplit(path string, essays []essay.Essay, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var w io.Writer = f
	var xw *xz.Writer
	if compress {
		if xw, err = xz.NewWriter(f); err != nil {
			f.Close()
			return err
		}
		w = xw
	}
	if err := WriteCSV(w, essays); err != nil {
		f.Close()
		return err
	}
	if xw != nil {
		if err := xw.Close(); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// LoadSplits reads the three splits from dir, preferring the compressed
// file when both forms exist.
func LoadSplits(dir string) (*Splits, error) {
	s := &Splits{}
	for _, name := range Names {
		essays, err := loadSplit(dir, name)
		if err != nil {
			return nil, err
		}
		s.set(name, essays)
	}
	return s, nil
}

func loadSplit(dir, name string) ([]essay.Essay, error) {
	for _, compress := range []bool{true, false} {
		path := splitPath(dir, name, compress)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		defer f.Close()

		var r io.Reader = f
		if compress {
			if r, err = xz.NewReader(f); err != nil {
				return nil, fmt.Errorf("open %s: %w", path, err)
			}
		}
		essays, err := ReadCSV(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return essays, nil
	}
	return nil, fmt.Errorf("%w: %s not found in %s", ErrNoSplit, name, dir)
}
