package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"bio-link-checker/internal/linkcheck"
)

var sampleLinks = []linkcheck.LinkResult{
	{OriginalURL: "https://a.test/ok", FinalURL: "https://a.test/ok", Status: 200, StatusText: "OK"},
	{OriginalURL: "https://a.test/old", FinalURL: "https://a.test/new", Status: 200, StatusText: "OK"},
	{OriginalURL: "https://a.test/gone", FinalURL: "https://a.test/gone", Status: 404, StatusText: "Not Found"},
	{OriginalURL: "https://slow.test/", FinalURL: "https://slow.test/", Status: 408, StatusText: "Timeout"},
	{OriginalURL: "https://down.test/", FinalURL: "https://down.test/", Status: 0, StatusText: "Fetch Error"},
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleLinks)

	if s.Total != 5 {
		t.Errorf("Expected total 5, but got %d", s.Total)
	}
	want := map[linkcheck.Category]int{
		linkcheck.CategoryOK:       2,
		linkcheck.CategoryRedirect: 0,
		linkcheck.CategoryBroken:   1,
		linkcheck.CategoryTimeout:  1,
		linkcheck.CategoryError:    1,
	}
	for c, n := range want {
		if got := s.Count(c); got != n {
			t.Errorf("Expected %d %s, but got %d", n, c, got)
		}
	}
	if s.Broken() != 3 {
		t.Errorf("Expected 3 broken, but got %d", s.Broken())
	}
	if got := s.String(); got != "5 links checked: 2 ok, 1 broken, 1 timeout, 1 error" {
		t.Errorf("Unexpected summary line %q", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	if s.Total != 0 || s.Broken() != 0 {
		t.Errorf("Expected empty summary, got %+v", s)
	}
	if got := s.String(); got != "0 links checked" {
		t.Errorf("Unexpected summary line %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	testCases := []struct {
		name  string
		links []linkcheck.LinkResult
		want  int
	}{
		{name: "Results", links: sampleLinks, want: 5},
		{name: "Nil encodes as empty list", links: nil, want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteJSON(&buf, tc.links); err != nil {
				t.Fatalf("WriteJSON returned an error: %v", err)
			}

			var doc map[string]json.RawMessage
			if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
				t.Fatalf("Output is not JSON: %v", err)
			}
			var links []linkcheck.LinkResult
			if err := json.Unmarshal(doc["links"], &links); err != nil {
				t.Fatalf("Expected a links array, got %s", doc["links"])
			}
			if links == nil {
				t.Error("Expected links to be an array, not null")
			}
			if len(links) != tc.want {
				t.Errorf("Expected %d links, but got %d", tc.want, len(links))
			}
		})
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleLinks); err != nil {
		t.Fatalf("WriteTable returned an error: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	for _, want := range []string{"Status", "Label", "Link", "Final URL"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("Expected header to contain %q, got %q", want, lines[0])
		}
	}

	var oldRow, okRow, downRow string
	for _, line := range lines {
		switch {
		case strings.Contains(line, "https://a.test/old"):
			oldRow = line
		case strings.Contains(line, "https://a.test/ok"):
			okRow = line
		case strings.Contains(line, "https://down.test/"):
			downRow = line
		}
	}
	if !strings.Contains(oldRow, "https://a.test/new") {
		t.Errorf("Expected redirected row to show the final URL, got %q", oldRow)
	}
	if strings.Count(okRow, "https://a.test/ok") != 1 {
		t.Errorf("Expected final URL to be omitted when unchanged, got %q", okRow)
	}
	if !strings.HasPrefix(strings.TrimSpace(downRow), "-") || !strings.Contains(downRow, "Fetch Error") {
		t.Errorf("Expected transport failure row to show '-' and its label, got %q", downRow)
	}

	if last := lines[len(lines)-1]; last != Summarize(sampleLinks).String() {
		t.Errorf("Expected summary as last line, but got %q", last)
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, nil); err != nil {
		t.Fatalf("WriteTable returned an error: %v", err)
	}
	if got := buf.String(); got != "0 links checked\n" {
		t.Errorf("Expected only the summary line, but got %q", got)
	}
}
