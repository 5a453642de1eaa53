// Command essaybr is the corpus tool for the essay-br collection.
// It extracts essays from the XML release, loads them into a SQLite store,
// builds stratified splits and reports syllable-based readability metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/essay-br/syllables"
	"github.com/essay-br/syllables/corpus"
	"github.com/essay-br/syllables/essay"
	"github.com/essay-br/syllables/internal/config"
	"github.com/essay-br/syllables/internal/logging"
	"github.com/essay-br/syllables/internal/store"
	"github.com/essay-br/syllables/readability"
)

const version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"${log_level}"`
	LogFormat string `name:"log-format" help:"Log format" enum:"text,json" default:"${log_format}"`
	DB        string `name:"db" help:"SQLite database path" type:"path" default:"${db}"`
	Corpus    string `name:"corpus" help:"Corpus directory holding the essay text files" type:"path" default:"${corpus}"`

	cfg *config.Config
	out io.Writer
}

// CLI defines the command-line interface for essaybr.
type CLI struct {
	Globals

	Syllabify   SyllabifyCmd   `cmd:"" help:"Split words into syllables"`
	Extract     ExtractCmd     `cmd:"" help:"Extract essays from the XML corpus into text files"`
	Ingest      IngestCmd      `cmd:"" help:"Load the corpus text files into the database"`
	Split       SplitCmd       `cmd:"" help:"Build stratified train/dev/test splits"`
	Stats       StatsCmd       `cmd:"" help:"Describe the corpus or one split"`
	Readability ReadabilityCmd `cmd:"" help:"Compute Flesch and lexical metrics"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

// setup applies the global flags: logging first, then the configuration
// check.
func (g *Globals) setup(cfg *config.Config, out io.Writer) error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	lc := logging.DefaultConfig()
	lc.Level, lc.Format = level, g.LogFormat
	logging.Init(lc)

	cfg.LogLevel, cfg.LogFormat = g.LogLevel, g.LogFormat
	cfg.CorpusDir, cfg.DatabasePath = g.Corpus, g.DB
	cfg.Split.Dir = filepath.Join(g.Corpus, "splits")
	g.cfg, g.out = cfg, out
	return cfg.Validate()
}

func (g *Globals) openStore() (*store.Store, error) {
	st, err := store.Open(g.DB)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", g.DB, err)
	}
	return st, nil
}

// selectEssays returns the whole corpus, or one split of the latest run
// when split is set.
func (g *Globals) selectEssays(st *store.Store, split string) ([]essay.Essay, error) {
	if split == "" {
		essays, err := st.Essays()
		if err != nil {
			return nil, err
		}
		if len(essays) == 0 {
			return nil, fmt.Errorf("no essays in %s; run ingest first", g.DB)
		}
		return essays, nil
	}
	if !slices.Contains(corpus.Names, split) {
		return nil, fmt.Errorf("%w: %q", corpus.ErrNoSplit, split)
	}
	run, err := st.LatestRun()
	if err != nil {
		return nil, err
	}
	return st.SplitMembers(run.ID, split)
}

func (g *Globals) printJSON(v any) error {
	enc := json.NewEncoder(g.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SyllabifyCmd splits words given on the command line.
type SyllabifyCmd struct {
	Words []string `arg:"" help:"Words or phrases to syllabify"`
	Raw   bool     `help:"Split arguments as given, without normalizing or tokenizing"`
	Trace bool     `help:"Show every rule decision"`
	JSON  bool     `name:"json" help:"Print results as JSON"`
}

type syllabifyJSON struct {
	Word      string   `json:"word"`
	TypeLine  string   `json:"type_line"`
	Syllables []string `json:"syllables"`
}

func (c *SyllabifyCmd) Run(g *Globals) error {
	var results []syllables.Result
	for _, arg := range c.Words {
		if c.Raw {
			results = append(results, syllables.Analyze(arg))
			continue
		}
		results = append(results, syllables.AnalyzeText(arg)...)
	}

	if c.JSON {
		out := make([]syllabifyJSON, 0, len(results))
		for _, r := range results {
			out = append(out, syllabifyJSON{Word: r.Word, TypeLine: string(r.Types), Syllables: r.Syllables})
		}
		return g.printJSON(out)
	}

	rules := syllables.Rules()
	for _, r := range results {
		fmt.Fprintf(g.out, "%s\t%s\t%s\n", r.Word, r.Types, strings.Join(r.Syllables, "-"))
		if !c.Trace {
			continue
		}
		fmt.Fprintf(g.out, "  types: %s\n", legend(r.Types))
		_, steps := syllables.Trace(r.Word)
		for _, d := range steps {
			verdict := "cut"
			if d.RejectedBy != "" {
				verdict = "rejected: " + d.RejectedBy
			}
			indent := strings.Repeat("  ", d.Depth+1)
			fmt.Fprintf(g.out, "%s%-12s %-5s at %d  %s\n", indent, d.Segment, rules[d.Rule].Pattern, d.At, verdict)
		}
	}
	return nil
}

// legend names each category of t once, in order of first appearance.
func legend(t syllables.TypeLine) string {
	var parts []string
	seen := make(map[syllables.Category]bool)
	for _, r := range string(t) {
		c := syllables.Category(r)
		if seen[c] {
			continue
		}
		seen[c] = true
		parts = append(parts, c.String()+"="+c.Name())
	}
	return strings.Join(parts, " ")
}

// ExtractCmd converts the XML release into one text file per essay.
type ExtractCmd struct {
	Src string `help:"Directory holding the XML corpus" type:"path" default:"${xml_dir}"`
	Dst string `help:"Output directory (defaults to --corpus)" type:"path"`
}

func (c *ExtractCmd) Run(g *Globals) error {
	dst := c.Dst
	if dst == "" {
		dst = g.Corpus
	}
	n, err := essay.ExtractXMLDir(c.Src, dst)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "Extracted %d essays into %s\n", n, dst)
	return nil
}

// IngestCmd loads the corpus directory into the store.
type IngestCmd struct {
	Pattern string   `help:"Glob of essay files under the corpus directory" default:"${pattern}"`
	Exclude []string `help:"Globs of files to skip"`
}

func (c *IngestCmd) Run(g *Globals) error {
	essays, err := essay.LoadDir(g.Corpus, c.Pattern, c.Exclude...)
	if err != nil {
		return err
	}

	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpsertEssays(essays); err != nil {
		return err
	}
	total, err := st.CountEssays()
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "Ingested %d essays (%d in %s)\n", len(essays), total, g.DB)
	return nil
}

// SplitCmd partitions the stored corpus and records the run.
type SplitCmd struct {
	Seed     uint64  `help:"Shuffle seed" default:"${seed}"`
	Train    float64 `help:"Train fraction" default:"${train}"`
	Dev      float64 `help:"Dev fraction" default:"${dev}"`
	Test     float64 `help:"Test fraction" default:"${test}"`
	Out      string  `help:"Directory for the split CSV files (defaults to <corpus>/splits)" type:"path"`
	Compress bool    `help:"Write xz-compressed CSV files" default:"${compress}"`
}

func (c *SplitCmd) Run(g *Globals) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	essays, err := g.selectEssays(st, "")
	if err != nil {
		return err
	}

	f := corpus.Fractions{Train: c.Train, Dev: c.Dev, Test: c.Test}
	splits, err := corpus.SplitStratified(essays, f, c.Seed)
	if err != nil {
		return err
	}
	runID, err := st.RecordSplit(splits, c.Seed, f)
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = g.cfg.Split.Dir
	}
	if err := corpus.SaveSplits(out, splits, c.Compress); err != nil {
		return err
	}

	fmt.Fprintf(g.out, "Run %s (seed %d)\n", runID, c.Seed)
	for _, name := range corpus.Names {
		members, _ := splits.Get(name)
		fmt.Fprintf(g.out, "  %-5s %d\n", name, len(members))
	}
	return nil
}

// StatsCmd prints corpus statistics.
type StatsCmd struct {
	Split string `help:"Describe one split of the latest run (train, dev, test)"`
	JSON  bool   `name:"json" help:"Print statistics as JSON"`
}

func (c *StatsCmd) Run(g *Globals) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	essays, err := g.selectEssays(st, c.Split)
	if err != nil {
		return err
	}
	s := corpus.Describe(essays)
	if c.JSON {
		return g.printJSON(s)
	}

	tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "essays\t%d\n", s.Essays)
	fmt.Fprintf(tw, "sentences\t%d\tmean %.2f\tstd %.2f\tmedian %.1f\n",
		s.Sentences, s.SentencesPerEssay.Mean, s.SentencesPerEssay.Std, s.SentencesPerEssay.Median)
	fmt.Fprintf(tw, "tokens\t%d\tmean %.2f\tstd %.2f\tmedian %.1f\n",
		s.Tokens, s.TokensPerEssay.Mean, s.TokensPerEssay.Std, s.TokensPerEssay.Median)
	fmt.Fprintf(tw, "tokens/sentence\t%.2f\n", s.TokensPerSentence)
	for _, sc := range s.Scores {
		fmt.Fprintf(tw, "score %d\t%d\n", sc.Score, sc.Count)
	}
	return tw.Flush()
}

// ReadabilityCmd computes readability over the corpus or one split.
type ReadabilityCmd struct {
	Split   string `help:"Analyze one split of the latest run (train, dev, test)"`
	Workers int    `help:"Number of worker goroutines" default:"${workers}"`
	Cache   int    `help:"Syllable cache size in words" default:"${cache}"`
	JSON    bool   `name:"json" help:"Print the full per-essay report as JSON"`
}

func (c *ReadabilityCmd) Run(g *Globals) error {
	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	essays, err := g.selectEssays(st, c.Split)
	if err != nil {
		return err
	}
	texts := make([]string, len(essays))
	for i, e := range essays {
		texts[i] = e.Text()
	}

	an, err := readability.NewAnalyzer(c.Cache)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r, err := an.AnalyzeCorpus(ctx, texts, c.Workers)
	if err != nil {
		return err
	}
	if c.JSON {
		return g.printJSON(r)
	}
	fmt.Fprintf(g.out, "Essays:            %d (%d empty)\n", len(r.Texts), r.Skipped)
	fmt.Fprintf(g.out, "Flesch:            %.2f\n", r.MeanFlesch)
	fmt.Fprintf(g.out, "Lexical diversity: %.4f\n", r.MeanLexicalDiversity)
	fmt.Fprintf(g.out, "Hapax legomena:    %.2f\n", r.MeanHapax)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.out, "essaybr %s\n", version)
	return nil
}

// newParser builds the kong parser with defaults taken from cfg.
func newParser(cli *CLI, cfg *config.Config, options ...kong.Option) (*kong.Kong, error) {
	vars := kong.Vars{
		"log_level":  cfg.LogLevel,
		"log_format": cfg.LogFormat,
		"db":         cfg.DatabasePath,
		"corpus":     cfg.CorpusDir,
		"xml_dir":    cfg.XMLDir,
		"pattern":    essay.DefaultPattern,
		"seed":       strconv.FormatUint(cfg.Split.Seed, 10),
		"train":      strconv.FormatFloat(cfg.Split.Train, 'g', -1, 64),
		"dev":        strconv.FormatFloat(cfg.Split.Dev, 'g', -1, 64),
		"test":       strconv.FormatFloat(cfg.Split.Test, 'g', -1, 64),
		"compress":   strconv.FormatBool(cfg.Split.Compress),
		"workers":    strconv.Itoa(cfg.Workers),
		"cache":      strconv.Itoa(cfg.Server.CacheSize),
	}
	options = append([]kong.Option{
		kong.Name("essaybr"),
		kong.Description("Syllabification and readability tools for the essay-br corpus"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		vars,
	}, options...)
	return kong.New(cli, options...)
}

// run parses args and executes the selected command, writing to out.
func run(args []string, out io.Writer, options ...kong.Option) error {
	cfg := config.Load()
	var cli CLI
	parser, err := newParser(&cli, cfg, options...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if err := cli.Globals.setup(cfg, out); err != nil {
		return err
	}
	return ctx.Run(&cli.Globals)
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	var parseErr *kong.ParseError
	if errors.As(err, &parseErr) {
		parseErr.Context.Kong.FatalIfErrorf(err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "essaybr: %v\n", err)
		os.Exit(1)
	}
}
