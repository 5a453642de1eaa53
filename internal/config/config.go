package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
)

type SplitConfig struct {
	Dir      string
	Seed     uint64
	Train    float64
	Dev      float64
	Test     float64
	Compress bool
}

type ServerConfig struct {
	Addr        string
	CacheSize   int
	CORSOrigins []string
}

type Config struct {
	CorpusDir    string
	XMLDir       string
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Workers      int
	Split        SplitConfig
	Server       ServerConfig
}

// Load returns the default configuration rooted at the essay-br corpus
// directory.
func Load() *Config {
	corpusDir := "essay-br"

	return &Config{
		CorpusDir:    corpusDir,
		XMLDir:       "data",
		DatabasePath: filepath.Join(corpusDir, "essays.db"),
		LogLevel:     "info",
		LogFormat:    "text",
		Workers:      runtime.GOMAXPROCS(0),
		Split: SplitConfig{
			Dir:   filepath.Join(corpusDir, "splits"),
			Seed:  230,
			Train: 0.8,
			Dev:   0.1,
			Test:  0.1,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CacheSize:   4096,
			CORSOrigins: []string{"*"},
		},
	}
}

var ErrInvalid = errors.New("invalid configuration")

func (c *Config) Validate() error {
	if c.CorpusDir == "" {
		return fmt.Errorf("%w: corpus dir is empty", ErrInvalid)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if c.Server.CacheSize < 1 {
		return fmt.Errorf("%w: cache size must be at least 1, got %d", ErrInvalid, c.Server.CacheSize)
	}
	s := c.Split
	if s.Train < 0 || s.Dev < 0 || s.Test < 0 {
		return fmt.Errorf("%w: split fractions must not be negative", ErrInvalid)
	}
	if math.Abs(s.Train+s.Dev+s.Test-1) > 1e-9 {
		return fmt.Errorf("%w: split fractions %g, %g, %g do not add up to 1.0", ErrInvalid, s.Train, s.Dev, s.Test)
	}
	return nil
}
