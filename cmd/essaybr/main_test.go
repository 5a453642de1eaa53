package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/essay-br/syllables/corpus"
	"github.com/essay-br/syllables/essay"
	"github.com/essay-br/syllables/readability"
)

// writeCorpus writes n essays in the text format under dir, alternating
// between two scores.
func writeCorpus(t *testing.T, dir string, n int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		e := essay.New("", (i%2)*500, fmt.Sprintf("Redação %d", i), []string{
			fmt.Sprintf("A escola número %d fica perto da praça.", i),
			"O computador ajuda os alunos. A saúde vem primeiro!",
		})
		var buf bytes.Buffer
		if _, err := e.WriteTo(&buf); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%02d.txt", i))
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

type testEnv struct {
	corpus string
	db     string
	splits string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	return testEnv{
		corpus: filepath.Join(dir, "essays"),
		db:     filepath.Join(dir, "db", "essays.db"),
		splits: filepath.Join(dir, "splits"),
	}
}

func (env testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	full := append([]string{"--corpus", env.corpus, "--db", env.db, "--log-level", "error"}, args...)
	err := run(full, &out)
	return out.String(), err
}

func TestSyllabifyCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "syllabify", "Computador", "escola")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"computador\tcVccvcVcVc\tcom-pu-ta-dor", "escola\tVscVcV\tes-co-la"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	out, err = env.run(t, "syllabify", "--raw", "--trace", "carro")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ca-rro", "types: c=consonant V=strong vowel", "rejected: liquid cluster", "Vc    at 2  cut"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output %q missing %q", out, want)
		}
	}

	out, err = env.run(t, "syllabify", "--raw", "--trace", "arvar")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"a-rvar", "rejected: double r"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output %q missing %q", out, want)
		}
	}

	out, err = env.run(t, "syllabify", "--json", "gato")
	if err != nil {
		t.Fatal(err)
	}
	var got []syllabifyJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 1 || strings.Join(got[0].Syllables, "|") != "ga|to" {
		t.Errorf("json output = %+v", got)
	}
}

func TestCorpusWorkflow(t *testing.T) {
	env := newTestEnv(t)
	writeCorpus(t, env.corpus, 20)

	out, err := env.run(t, "ingest")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Ingested 20 essays") {
		t.Errorf("ingest output = %q", out)
	}

	out, err = env.run(t, "split", "--out", env.splits)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "seed 230") || !strings.Contains(out, "train 16") {
		t.Errorf("split output = %q", out)
	}
	loaded, err := corpus.LoadSplits(env.splits)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 20 {
		t.Errorf("saved splits hold %d essays, want 20", loaded.Len())
	}

	out, err = env.run(t, "stats", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var st corpus.Stats
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if st.Essays != 20 || len(st.Scores) != 2 {
		t.Errorf("stats = %+v", st)
	}

	out, err = env.run(t, "readability", "--split", "train", "--json", "--workers", "2")
	if err != nil {
		t.Fatal(err)
	}
	var rep readability.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rep.Texts) != len(loaded.Train) || rep.Skipped != 0 {
		t.Errorf("report has %d texts (%d skipped), want %d", len(rep.Texts), rep.Skipped, len(loaded.Train))
	}
	if rep.MeanFlesch == 0 {
		t.Error("mean Flesch is zero")
	}
}

func TestCommandErrors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "stats"); err == nil || !strings.Contains(err.Error(), "run ingest first") {
		t.Errorf("stats on empty store: err = %v", err)
	}

	writeCorpus(t, env.corpus, 4)
	if _, err := env.run(t, "ingest"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "stats", "--split", "holdout"); !errors.Is(err, corpus.ErrNoSplit) {
		t.Errorf("unknown split: err = %v, want ErrNoSplit", err)
	}
	if _, err := env.run(t, "split", "--train", "0.5", "--dev", "0.1", "--test", "0.1"); !errors.Is(err, corpus.ErrBadFractions) {
		t.Errorf("bad fractions: err = %v, want ErrBadFractions", err)
	}
	if _, err := env.run(t, "--log-format", "xml", "version"); err == nil {
		t.Error("invalid --log-format accepted")
	}
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "essaybr "+version+"\n" {
		t.Errorf("version output = %q", out)
	}
}
