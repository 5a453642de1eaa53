package essay

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"9,5", 950, false},
		{"9.5", 950, false},
		{"500", 500, false},
		{"10,0", 1000, false},
		{"", 0, true},
		{"nota", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatScore(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidScore) {
					t.Errorf("FormatScore(%q) error = %v, want ErrInvalidScore", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("FormatScore(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{10, 0},
		{30, 50},
		{60, 50},
		{70, 100},
		{0, 0},
		{50, 50},
		{500, 500},
		{720, 750},
		{919, 900},
		{980, 1000},
	}
	for _, tt := range tests {
		if got := NormalizeScore(tt.in); got != tt.want {
			t.Errorf("NormalizeScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

const sample = `# score: 7,2
Educação no Brasil [Tema livre]
A educação é a base de tudo.

Sem ela não há futuro.
`

func TestParse(t *testing.T) {
	e, err := Parse(strings.NewReader(sample), "sample.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Score != 750 {
		t.Errorf("Score = %d, want 750", e.Score)
	}
	if e.Title != "Educação no Brasil" {
		t.Errorf("Title = %q", e.Title)
	}
	want := []string{"A educação é a base de tudo.", "Sem ela não há futuro."}
	if !reflect.DeepEqual(e.Paragraphs, want) {
		t.Errorf("Paragraphs = %q, want %q", e.Paragraphs, want)
	}
	if e.ID != Digest(e.Body()) || len(e.ID) != 64 {
		t.Errorf("ID = %q", e.ID)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("title\nbody\n"), "x"); !errors.Is(err, ErrMissingScore) {
		t.Errorf("missing score: err = %v", err)
	}
	if _, err := Parse(strings.NewReader("# score: abc\ntitle\n"), "x"); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("bad score: err = %v", err)
	}
}

func TestWriteToRoundTrip(t *testing.T) {
	e, err := Parse(strings.NewReader(sample), "sample.txt")
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if _, err := e.WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	got, err := Parse(strings.NewReader(b.String()), "sample.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, e) {
		t.Errorf("round trip = %+v, want %+v", got, e)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
		enc  string
	}{
		{"utf8", []byte("ação"), "ação", "utf-8"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "ação"...), "ação", "utf-8"},
		{"windows-1252", []byte{'a', 0xE7, 0xE3, 'o'}, "ação", "windows-1252"},
		{"utf16le", []byte{0xFF, 0xFE, 'o', 0, 'i', 0}, "oi", "utf-16le"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := Decode(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want || enc != tt.enc {
				t.Errorf("Decode = %q, %q, want %q, %q", got, enc, tt.want, tt.enc)
			}
		})
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte(sample))
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), []byte("# score: 300\nOutro\nTexto diferente.\n"))
	writeFile(t, filepath.Join(dir, "sub", "dup.txt"), []byte(sample))
	writeFile(t, filepath.Join(dir, "broken.txt"), []byte("no score here\n"))
	writeFile(t, filepath.Join(dir, "latin1.txt"), []byte("# score: 500\nT\xedtulo\nA\xe7\xe3o.\n"))
	writeFile(t, filepath.Join(dir, "splits", "train.txt"), []byte("# score: 100\nx\ny\n"))
	writeFile(t, filepath.Join(dir, "notes.md"), []byte("# score: 100\n"))

	essays, err := LoadDir(dir, "", "splits/**")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	var titles []string
	for _, e := range essays {
		titles = append(titles, e.Title)
	}
	want := []string{"Educação no Brasil", "Título", "Outro"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("titles = %q, want %q", titles, want)
	}
	if essays[0].Source != filepath.Join(dir, "a.txt") {
		t.Errorf("Source = %q", essays[0].Source)
	}
}

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<essay>
  <finalgrade>7,5</finalgrade>
  <title>Educação</title>
  <body>
O texto <wrong>errado</wrong><correct>certo</correct> continua.
Segundo parágrafo.
  </body>
</essay>`

func TestExtractXML(t *testing.T) {
	e, err := ExtractXML(strings.NewReader(sampleXML), "e.xml")
	if err != nil {
		t.Fatalf("ExtractXML: %v", err)
	}
	if e.Score != 750 || e.Title != "Educação" {
		t.Errorf("got score %d title %q", e.Score, e.Title)
	}
	want := []string{"O texto errado continua.", "Segundo parágrafo."}
	if !reflect.DeepEqual(e.Paragraphs, want) {
		t.Errorf("Paragraphs = %q, want %q", e.Paragraphs, want)
	}

	if _, err := ExtractXML(strings.NewReader("<essay><title>x</title></essay>"), "x.xml"); !errors.Is(err, ErrMissingScore) {
		t.Errorf("missing grade: err = %v", err)
	}
}

func TestExtractXMLDir(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "prompt1", "xml", "essay-01.xml"), []byte(sampleXML))
	writeFile(t, filepath.Join(src, "prompt1", "xml", "essay-01.conll"), []byte("ignored"))
	writeFile(t, filepath.Join(src, "prompt1", "xml", ".DS_Store"), []byte("ignored"))
	writeFile(t, filepath.Join(src, "prompt2", "xml", "bad.xml"), []byte("<essay>"))

	n, err := ExtractXMLDir(src, dst)
	if err != nil {
		t.Fatalf("ExtractXMLDir: %v", err)
	}
	if n != 1 {
		t.Errorf("wrote %d essays, want 1", n)
	}
	data, err := os.ReadFile(filepath.Join(dst, "essay-01.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# score: 750\nEducação\n") {
		t.Errorf("unexpected output %q", data)
	}
}
