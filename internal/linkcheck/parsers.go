package linkcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Normalize resolves href against base and returns the canonical absolute
// form of the result. Only http and https links are accepted.
func Normalize(href string, base *url.URL) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrEmptyLink
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}

	return canonicalize(base.ResolveReference(ref))
}

func canonicalize(u *url.URL) (string, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidLink)
	}

	c := *u
	c.Scheme = scheme
	c.Host = strings.TrimSuffix(strings.ToLower(c.Host), ":")
	switch port := c.Port(); {
	case scheme == "http" && port == "80", scheme == "https" && port == "443":
		c.Host = strings.TrimSuffix(c.Host, ":"+port)
	}
	if c.Path == "" && c.RawPath == "" {
		c.Path = "/"
	}

	return c.String(), nil
}

// ExtractLinks returns the unique normalized targets of every anchor in doc,
// in document order. Anchors whose href cannot be normalized are skipped.
func ExtractLinks(ctx context.Context, logger *slog.Logger, doc *goquery.Document, baseURL *url.URL) []string {
	logger = logger.With(slog.String("base_url", baseURL.String()))
	logger.DebugContext(ctx, "Starting to extract links")

	links := []string{}
	seen := make(map[string]struct{})
	var anchors, skipped int

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		anchors++
		href, _ := s.Attr("href")

		link, err := Normalize(href, baseURL)
		if err != nil {
			skipped++
			logger.DebugContext(ctx, "Skipping link", slog.String("href", href), slog.Any("error", err))
			return
		}

		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	logger.InfoContext(ctx, "Finished extracting links",
		slog.Int("anchors", anchors),
		slog.Int("unique_links", len(links)),
		slog.Int("skipped", skipped),
	)

	return links
}

// ExtractLinksFromReader parses r as HTML and extracts its links. Malformed
// markup is tolerated; only a failure to read r is reported.
func ExtractLinksFromReader(ctx context.Context, logger *slog.Logger, r io.Reader, baseURL *url.URL) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to parse HTML document", slog.Any("error", err))
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return ExtractLinks(ctx, logger, doc, baseURL), nil
}
