// Command server exposes the syllabifier and readability metrics as a
// JSON REST API.
//
// Endpoints:
//
//	GET  /api/syllabify?word=<word>[&normalize=true][&trace=true]
//	POST /api/syllabify/text   body: {"text":"..."}
//	POST /api/readability      body: {"text":"..."}
//	GET  /api/rules
//	GET  /api/health
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/essay-br/syllables"
	"github.com/essay-br/syllables/internal/config"
	"github.com/essay-br/syllables/internal/logging"
	"github.com/essay-br/syllables/readability"
)

// maxBodyBytes bounds POST bodies; a long essay is well under 1 MiB.
const maxBodyBytes = 1 << 20

// ---- JSON response types ------------------------------------------------

type decisionJSON struct {
	Segment    string `json:"segment"`
	Rule       string `json:"rule"`
	At         int    `json:"at"`
	RejectedBy string `json:"rejected_by,omitempty"`
	Depth      int    `json:"depth"`
}

type syllabifyResponse struct {
	Word      string         `json:"word"`
	TypeLine  string         `json:"type_line"`
	Syllables []string       `json:"syllables"`
	Count     int            `json:"count"`
	Trace     []decisionJSON `json:"trace,omitempty"`
}

type syllabifyTextResponse struct {
	Results []syllabifyResponse `json:"results"`
	Total   int                 `json:"total_syllables"`
}

type ruleJSON struct {
	Priority int    `json:"priority"`
	Pattern  string `json:"pattern"`
	Offset   int    `json:"offset"`
}

type rulesResponse struct {
	Rules      []ruleJSON `json:"rules"`
	Exclusions []string   `json:"exclusions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- helpers ------------------------------------------------------------

func toSyllabifyJSON(r syllables.Result) syllabifyResponse {
	return syllabifyResponse{
		Word:      r.Word,
		TypeLine:  string(r.Types),
		Syllables: r.Syllables,
		Count:     len(r.Syllables),
	}
}

func toTraceJSON(steps []syllables.Decision) []decisionJSON {
	rules := syllables.Rules()
	out := make([]decisionJSON, 0, len(steps))
	for _, d := range steps {
		out = append(out, decisionJSON{
			Segment:    d.Segment,
			Rule:       string(rules[d.Rule].Pattern),
			At:         d.At,
			RejectedBy: d.RejectedBy,
			Depth:      d.Depth,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Text string `json:"text"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty 'text' field")
		return "", false
	}
	return body.Text, true
}

// ---- handlers -----------------------------------------------------------

func handleSyllabify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		q := r.URL.Query()
		if !q.Has("word") {
			writeError(w, http.StatusBadRequest, "missing 'word' query parameter")
			return
		}
		word := q.Get("word")
		if normalize, _ := strconv.ParseBool(q.Get("normalize")); normalize {
			word = syllables.NormalizeWord(word)
		}

		resp := toSyllabifyJSON(syllables.Analyze(word))
		if trace, _ := strconv.ParseBool(q.Get("trace")); trace {
			_, steps := syllables.Trace(word)
			resp.Trace = toTraceJSON(steps)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleSyllabifyText() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		text, ok := decodeText(w, r)
		if !ok {
			return
		}

		results := syllables.AnalyzeText(text)
		out := syllabifyTextResponse{Results: make([]syllabifyResponse, 0, len(results))}
		for _, res := range results {
			sj := toSyllabifyJSON(res)
			out.Total += sj.Count
			out.Results = append(out.Results, sj)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleReadability(an *readability.Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		text, ok := decodeText(w, r)
		if !ok {
			return
		}

		m, err := an.Analyze(text)
		if errors.Is(err, readability.ErrEmptyText) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func handleRules() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		var resp rulesResponse
		for i, rule := range syllables.Rules() {
			resp.Rules = append(resp.Rules, ruleJSON{Priority: i + 1, Pattern: string(rule.Pattern), Offset: rule.Offset})
		}
		for _, e := range syllables.Exclusions() {
			resp.Exclusions = append(resp.Exclusions, e.Name)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func newHandler(an *readability.Analyzer, origins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/syllabify/text", handleSyllabifyText())
	mux.HandleFunc("/api/syllabify", handleSyllabify())
	mux.HandleFunc("/api/readability", handleReadability(an))
	mux.HandleFunc("/api/rules", handleRules())
	mux.HandleFunc("/api/health", handleHealth())

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return logging.Middleware(c.Handler(mux))
}

// ---- main ---------------------------------------------------------------

func main() {
	cfg := config.Load()
	addr := flag.String("addr", cfg.Server.Addr, "listen address")
	cacheSize := flag.Int("cache", cfg.Server.CacheSize, "syllable cache size (words)")
	origins := flag.String("cors", strings.Join(cfg.Server.CORSOrigins, ","), "comma-separated allowed CORS origins")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", cfg.LogFormat, "log format (text, json)")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		logging.Error("invalid flag", "error", err)
		os.Exit(2)
	}
	lc := logging.DefaultConfig()
	lc.Level, lc.Format = level, *logFormat
	logging.Init(lc)

	cfg.Server.Addr = *addr
	cfg.Server.CacheSize = *cacheSize
	cfg.Server.CORSOrigins = strings.Split(*origins, ",")
	if err := cfg.Validate(); err != nil {
		logging.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	an, err := readability.NewAnalyzer(cfg.Server.CacheSize)
	if err != nil {
		logging.Error("failed to create analyzer", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newHandler(an, cfg.Server.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("shutdown", "error", err)
		}
	}()

	logging.Info("listening", "addr", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error("server error", "error", err)
		os.Exit(1)
	}
	logging.Info("server stopped")
}
