package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/essay-br/syllables/readability"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	an, err := readability.NewAnalyzer(64)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(newHandler(an, []string{"https://example.org"}))
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestSyllabifyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		query string
		word  string
		types string
		want  []string
	}{
		{"word=computador", "computador", "cVccvcVcVc", []string{"com", "pu", "ta", "dor"}},
		{"word=Casa&normalize=true", "casa", "cVsV", []string{"ca", "sa"}},
		{"word=", "", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/syllabify?" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			got := decode[syllabifyResponse](t, resp)
			if got.Word != tt.word || got.TypeLine != tt.types {
				t.Errorf("word/types = %q/%q, want %q/%q", got.Word, got.TypeLine, tt.word, tt.types)
			}
			if !reflect.DeepEqual(got.Syllables, tt.want) || got.Count != len(tt.want) {
				t.Errorf("syllables = %q (count %d), want %q", got.Syllables, got.Count, tt.want)
			}
		})
	}
}

func TestSyllabifyTrace(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/syllabify?word=carro&trace=1")
	if err != nil {
		t.Fatal(err)
	}
	got := decode[syllabifyResponse](t, resp)
	if len(got.Trace) == 0 {
		t.Fatal("trace is empty")
	}
	var vetoed, accepted bool
	for _, d := range got.Trace {
		if d.Segment != "carro" || d.Depth != 0 {
			continue
		}
		if d.At == 3 && d.RejectedBy == "liquid cluster" {
			vetoed = true
		}
		if d.At == 3 && d.RejectedBy == "" {
			t.Errorf("cut car|ro was accepted: %+v", d)
		}
		if d.Rule == "Vc" && d.At == 2 && d.RejectedBy == "" {
			accepted = true
		}
	}
	if !vetoed {
		t.Errorf("trace has no liquid cluster veto at 3: %+v", got.Trace)
	}
	if !accepted {
		t.Errorf("trace has no accepted Vc cut at 2: %+v", got.Trace)
	}
}

func TestSyllabifyErrors(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/syllabify")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing word: status = %d, want 400", resp.StatusCode)
	}
	if e := decode[errorResponse](t, resp); e.Error == "" {
		t.Error("missing word: empty error message")
	}

	resp, err = http.Post(srv.URL+"/api/syllabify?word=casa", "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST: status = %d, want 405", resp.StatusCode)
	}
}

func TestSyllabifyText(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/syllabify/text", "application/json",
		strings.NewReader(`{"text":"Casa, gato!"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[syllabifyTextResponse](t, resp)
	if len(got.Results) != 2 || got.Total != 4 {
		t.Fatalf("results = %+v, total = %d", got.Results, got.Total)
	}
	if got.Results[0].Word != "casa" {
		t.Errorf("first word = %q, want casa", got.Results[0].Word)
	}

	resp, err = http.Post(srv.URL+"/api/syllabify/text", "application/json", strings.NewReader(`{"text":"  "}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank text: status = %d, want 400", resp.StatusCode)
	}
}

func TestReadabilityEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/readability", "application/json",
		strings.NewReader(`{"text":"A casa é bonita. O gato dorme."}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	m := decode[readability.Metrics](t, resp)
	if m.Sentences != 2 || m.Words != 7 {
		t.Errorf("sentences/words = %d/%d, want 2/7", m.Sentences, m.Words)
	}
	if m.Syllables < m.Words {
		t.Errorf("syllables = %d, fewer than words %d", m.Syllables, m.Words)
	}

	resp, err = http.Post(srv.URL+"/api/readability", "application/json", strings.NewReader(`{"text":"..."}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("punctuation only: status = %d, want 422", resp.StatusCode)
	}
}

func TestRulesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/rules")
	if err != nil {
		t.Fatal(err)
	}
	got := decode[rulesResponse](t, resp)
	if len(got.Rules) != 15 {
		t.Fatalf("len(rules) = %d, want 15", len(got.Rules))
	}
	if got.Rules[0] != (ruleJSON{Priority: 1, Pattern: "VV", Offset: 1}) {
		t.Errorf("first rule = %+v", got.Rules[0])
	}
	want := []string{"degenerate", "liquid cluster", "double l", "double r", "ch digraph"}
	if !reflect.DeepEqual(got.Exclusions, want) {
		t.Errorf("exclusions = %q, want %q", got.Exclusions, want)
	}
}

func TestHealthAndCORS(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	req.Header.Set("Origin", "https://example.org")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
	if got := decode[map[string]string](t, resp); got["status"] != "ok" {
		t.Errorf("health = %v", got)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin = %q", got)
	}
}
