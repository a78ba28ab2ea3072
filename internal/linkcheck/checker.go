package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Checker scans a single page and reports the health of every link on it.
// A Checker holds no per-scan state and is safe for concurrent use.
type Checker struct {
	pageClient  *http.Client
	probeClient *http.Client
	logger      *slog.Logger

	probeTimeout   time.Duration
	userAgent      string
	maxConcurrency int
}

type Option func(*Checker)

// WithHTTPClient makes the Checker use client for the page fetch and for
// every probe.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		c.pageClient = client
		c.probeClient = client
	}
}

// WithMaxConcurrency caps the number of probes in flight. Zero or a
// negative value leaves probing unbounded.
func WithMaxConcurrency(n int) Option {
	return func(c *Checker) {
		c.maxConcurrency = n
	}
}

func New(logger *slog.Logger, opts ...Option) *Checker {
	c := &Checker{
		pageClient:   http.DefaultClient,
		probeClient:  newProbeClient(),
		logger:       logger,
		probeTimeout: ProbeTimeout,
		userAgent:    UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseTarget validates the URL of the page to scan.
func ParseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrURLRequired
	}

	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidURL, raw, err)
	}
	if !target.IsAbs() || target.Hostname() == "" {
		return nil, fmt.Errorf("%w %q: not an absolute url", ErrInvalidURL, raw)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: unsupported scheme", ErrInvalidURL, raw)
	}
	return target, nil
}

// Scan fetches targetURL, extracts the links on the page and probes each of
// them concurrently. Either every unique link gets a result or an error is
// returned; probe failures never fail the scan.
func (c *Checker) Scan(ctx context.Context, targetURL string) ([]LinkResult, error) {
	logger := c.logger.With(slog.String("target_url", targetURL))
	logger.DebugContext(ctx, "Starting scan")

	target, err := ParseTarget(targetURL)
	if err != nil {
		logger.WarnContext(ctx, "Rejected scan target", slog.Any("error", err))
		return nil, err
	}

	resp, err := c.loadWebPage(ctx, logger, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := decodeBody(ctx, logger, resp)
	if err != nil {
		return nil, err
	}

	links, err := ExtractLinksFromReader(ctx, logger, body, target)
	if err != nil {
		return nil, err
	}

	results := c.probeLinks(ctx, logger, links)
	if err := ctx.Err(); err != nil {
		logger.WarnContext(ctx, "Scan interrupted", slog.Any("error", err))
		return nil, fmt.Errorf("scanning %s: %w", target, err)
	}

	counts := make(map[Category]int)
	for _, r := range results {
		counts[r.Category()]++
	}
	logger.InfoContext(ctx, "Scan complete",
		slog.Group("results",
			slog.Int("total", len(results)),
			slog.Int("ok", counts[CategoryOK]),
			slog.Int("redirect", counts[CategoryRedirect]),
			slog.Int("broken", counts[CategoryBroken]),
			slog.Int("timeout", counts[CategoryTimeout]),
			slog.Int("error", counts[CategoryError]),
		),
	)

	return results, nil
}

// probeLinks probes every link and returns the results in the same order.
func (c *Checker) probeLinks(ctx context.Context, logger *slog.Logger, links []string) []LinkResult {
	results := make([]LinkResult, len(links))
	if len(links) == 0 {
		logger.InfoContext(ctx, "No links to check, skipping probes")
		return results
	}

	logger.InfoContext(ctx, "Starting to check links",
		slog.Int("total_links", len(links)),
		slog.Int("max_concurrency", c.maxConcurrency),
	)

	var g errgroup.Group
	if c.maxConcurrency > 0 {
		g.SetLimit(c.maxConcurrency)
	}
	for i, link := range links {
		g.Go(func() error {
			results[i] = c.Probe(ctx, link)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
