package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bio-link-checker/internal/linkcheck"
)

func bioPage(t *testing.T, withBroken bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="/ok">ok</a>`)
		if withBroken {
			fmt.Fprint(w, `<a href="/gone">gone</a>`)
		}
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRunScan(t *testing.T) {
	clean := bioPage(t, false)
	broken := bioPage(t, true)

	testCases := []struct {
		name       string
		args       []string
		wantCode   int
		wantLinks  int
		wantStderr string
	}{
		{name: "Clean page", args: []string{"scan", clean.URL}, wantCode: exitOK, wantLinks: 1},
		{name: "Broken links without flag", args: []string{"scan", "--json", broken.URL}, wantCode: exitOK, wantLinks: 2},
		{name: "Broken links with flag", args: []string{"scan", "--fail-on-broken", broken.URL}, wantCode: exitBrokenLinks, wantLinks: 2},
		{name: "Invalid url", args: []string{"scan", "not a url"}, wantCode: exitFailed, wantStderr: "Invalid URL provided"},
		{name: "Page fetch error", args: []string{"scan", clean.URL + "/forbidden"}, wantCode: exitFailed, wantStderr: "Failed to fetch URL: Forbidden"},
		{name: "Missing argument", args: []string{"scan"}, wantCode: exitUsage, wantStderr: "accepts 1 arg"},
		{name: "Negative concurrency", args: []string{"scan", "--concurrency=-1", clean.URL}, wantCode: exitUsage, wantStderr: "--concurrency"},
		{name: "Bad log level", args: []string{"scan", "--log-level", "loud", clean.URL}, wantCode: exitUsage, wantStderr: "invalid log level"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := run(tc.args, &stdout, &stderr)

			if code != tc.wantCode {
				t.Fatalf("Expected exit code %d, but got %d (stderr %q)", tc.wantCode, code, stderr.String())
			}
			if tc.wantStderr != "" && !strings.Contains(stderr.String(), tc.wantStderr) {
				t.Errorf("Expected stderr to contain %q, got %q", tc.wantStderr, stderr.String())
			}
			if tc.wantLinks == 0 {
				return
			}

			var doc struct {
				Links []linkcheck.LinkResult `json:"links"`
			}
			if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
				t.Fatalf("Expected JSON on a non-terminal stdout, got %q", stdout.String())
			}
			if len(doc.Links) != tc.wantLinks {
				t.Errorf("Expected %d links, but got %d", tc.wantLinks, len(doc.Links))
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run([]string{"version"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("Expected exit code 0, but got %d", code)
	}
	if got := strings.TrimSpace(stdout.String()); got != version {
		t.Errorf("Expected %q, but got %q", version, got)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run([]string{"explode"}, &stdout, &stderr); code != exitUsage {
		t.Errorf("Expected exit code %d, but got %d", exitUsage, code)
	}
}
