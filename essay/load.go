package essay

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/essay-br/syllables/internal/logging"
)

var log = logging.ForComponent("essay")

// DefaultPattern selects essay files anywhere under the corpus directory.
const DefaultPattern = "**/*.txt"

// LoadDir parses every file under dir matching pattern (DefaultPattern
// when empty). Paths matching any exclude pattern are skipped. Files that
// fail to parse are logged and skipped; essays with a body already seen
// are dropped. The result is ordered by path.
func LoadDir(dir, pattern string, exclude ...string) ([]Essay, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", pattern, dir, err)
	}
	sort.Strings(matches)

	var (
		essays []Essay
		seen   = make(map[string]string)
	)
	for _, rel := range matches {
		if excluded(rel, exclude) {
			continue
		}
		e, err := loadFile(fsys, rel)
		if err != nil {
			log.Warn("skipping essay", "path", rel, "error", err)
			continue
		}
		e.Source = filepath.Join(dir, filepath.FromSlash(rel))
		if first, dup := seen[e.ID]; dup {
			log.Debug("duplicate essay", "path", e.Source, "first", first)
			continue
		}
		seen[e.ID] = e.Source
		essays = append(essays, e)
	}
	log.Info("corpus loaded", "dir", dir, "files", len(matches), "essays", len(essays))
	return essays, nil
}

func loadFile(fsys fs.FS, name string) (Essay, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Essay{}, err
	}
	text, enc, err := Decode(data)
	if err != nil {
		return Essay{}, err
	}
	if enc != "utf-8" {
		log.Debug("decoded legacy encoding", "path", name, "encoding", enc)
	}
	return Parse(strings.NewReader(text), name)
}

func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
