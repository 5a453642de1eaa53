package essay

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/bmatcuk/doublestar/v4"
)

var (
	xpGrade = xpath.MustCompile("//finalgrade")
	xpTitle = xpath.MustCompile("//title")
	xpBody  = xpath.MustCompile("//body")
)

// ExtractXML reads an annotated essay. The body keeps the student's
// original text: <wrong> spans are kept and <correct> spans, the
// reviewer's fixes, are dropped.
func ExtractXML(r io.Reader, source string) (Essay, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return Essay{}, fmt.Errorf("parse %s: %w", source, err)
	}

	grade := xmlquery.QuerySelector(doc, xpGrade)
	if grade == nil {
		return Essay{}, fmt.Errorf("%s: %w", source, ErrMissingScore)
	}
	score, err := FormatScore(strings.TrimSpace(grade.InnerText()))
	if err != nil {
		return Essay{}, fmt.Errorf("%s: %w", source, err)
	}

	var title string
	if n := xmlquery.QuerySelector(doc, xpTitle); n != nil {
		title = strings.TrimSpace(n.InnerText())
	}

	var paragraphs []string
	if body := xmlquery.QuerySelector(doc, xpBody); body != nil {
		paragraphs = bodyParagraphs(body)
	}
	return New(source, NormalizeScore(score), title, paragraphs), nil
}

func bodyParagraphs(body *xmlquery.Node) []string {
	var b strings.Builder
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		switch {
		case n.Type == xmlquery.CommentNode:
			continue
		case n.Type == xmlquery.ElementNode && n.Data == "correct":
			continue
		case n.Type == xmlquery.TextNode, n.Type == xmlquery.CharDataNode:
			b.WriteString(n.Data)
		default:
			b.WriteByte(' ')
			b.WriteString(n.InnerText())
			b.WriteByte(' ')
		}
	}

	var out []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ExtractXMLDir converts every <src>/*/xml/<file> into a text essay under
// dst named after the file's base name. Hidden files and .conll
// annotations are skipped. It returns the number of essays written.
func ExtractXMLDir(src, dst string) (int, error) {
	matches, err := doublestar.Glob(os.DirFS(src), "*/xml/*", doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("glob %s: %w", src, err)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}

	log.Info("extracting essays", "src", src, "files", len(matches))
	written := 0
	for _, rel := range matches {
		base := path.Base(rel)
		if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".conll") {
			continue
		}
		if err := extractFile(filepath.Join(src, filepath.FromSlash(rel)), dst); err != nil {
			log.Warn("skipping xml essay", "path", rel, "error", err)
			continue
		}
		written++
	}
	return written, nil
}

func extractFile(srcPath, dst string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	e, err := ExtractXML(f, srcPath)
	if err != nil {
		return err
	}

	name := filepath.Base(srcPath)
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	out, err := os.Create(filepath.Join(dst, name+".txt"))
	if err != nil {
		return err
	}
	if _, err := e.WriteTo(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
