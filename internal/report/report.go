// Package report renders scan results for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rodaine/table"

	"bio-link-checker/internal/linkcheck"
)

// Summary counts scan results per category.
type Summary struct {
	Total  int
	counts map[linkcheck.Category]int
	broken int
}

func Summarize(links []linkcheck.LinkResult) Summary {
	s := Summary{Total: len(links), counts: make(map[linkcheck.Category]int)}
	for _, l := range links {
		s.counts[l.Category()]++
		if l.Broken() {
			s.broken++
		}
	}
	return s
}

// Count returns the number of results in category c.
func (s Summary) Count(c linkcheck.Category) int {
	return s.counts[c]
}

// Broken returns the number of links that failed outright or answered with
// a status of 400 and above, timeouts included.
func (s Summary) Broken() int {
	return s.broken
}

func (s Summary) String() string {
	parts := make([]string, 0, len(linkcheck.Categories))
	for _, c := range linkcheck.Categories {
		if n := s.counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, c))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d links checked", s.Total)
	}
	return fmt.Sprintf("%d links checked: %s", s.Total, strings.Join(parts, ", "))
}

type document struct {
	Links []linkcheck.LinkResult `json:"links"`
}

// WriteJSON writes links in the same {"links": [...]} shape the HTTP API
// returns.
func WriteJSON(w io.Writer, links []linkcheck.LinkResult) error {
	if links == nil {
		links = []linkcheck.LinkResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Links: links}); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	return nil
}

// WriteTable prints one row per link followed by a summary line.
func WriteTable(w io.Writer, links []linkcheck.LinkResult) error {
	if len(links) > 0 {
		tbl := table.New("Status", "Label", "Link", "Final URL").WithWriter(w)
		for _, l := range links {
			final := ""
			if l.Redirected() {
				final = l.FinalURL
			}
			tbl.AddRow(statusCell(l), l.StatusText, l.OriginalURL, final)
		}
		tbl.Print()
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, Summarize(links))
	return err
}

func statusCell(l linkcheck.LinkResult) string {
	if l.Status == 0 {
		return "-"
	}
	return strconv.Itoa(l.Status)
}
