package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	// ProbeTimeout caps each link probe, from request start until the
	// response headers arrive.
	ProbeTimeout = 10 * time.Second

	UserAgent = "ClearOutBioLinkChecker/1.0"

	maxRedirects = 20
	maxPageBytes = 5 << 20
)

func newProbeClient() *http.Client {
	return &http.Client{CheckRedirect: limitRedirects(maxRedirects)}
}

func limitRedirects(n int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= n {
			return fmt.Errorf("stopped after %d redirects", n)
		}
		return nil
	}
}

// loadWebPage fetches the scan target. The caller owns the returned body.
func (c *Checker) loadWebPage(ctx context.Context, logger *slog.Logger, target *url.URL) (*http.Response, error) {
	logger.DebugContext(ctx, "Starting to load web page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("preparing request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.pageClient.Do(req)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to fetch page", slog.Any("error", err))
		return nil, fmt.Errorf("fetching page %s: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp)
		fetchErr := &PageFetchError{
			URL:        target.String(),
			StatusCode: resp.StatusCode,
			StatusText: reasonPhrase(resp),
		}
		logger.WarnContext(ctx, "Page responded with non-success status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("status_text", fetchErr.StatusText),
		)
		return nil, fetchErr
	}

	logger.InfoContext(ctx, "Successfully fetched page",
		slog.Int("status_code", resp.StatusCode),
		slog.String("final_url", resp.Request.URL.String()),
	)
	return resp, nil
}

// decodeBody converts the page body to UTF-8 according to its declared
// charset, reading at most maxPageBytes. An empty body yields an empty
// reader.
func decodeBody(ctx context.Context, logger *slog.Logger, resp *http.Response) (io.Reader, error) {
	body := io.LimitReader(resp.Body, maxPageBytes)
	contentType := resp.Header.Get("Content-Type")

	utf8Body, err := charset.NewReader(body, contentType)
	if errors.Is(err, io.EOF) {
		logger.DebugContext(ctx, "Page body is empty", slog.String("content_type", contentType))
		return strings.NewReader(""), nil
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to read page body", slog.Any("error", err))
		return nil, fmt.Errorf("reading page body: %w", err)
	}
	return utf8Body, nil
}

// Probe issues one GET against link and classifies the outcome. It never
// fails: transport problems are recorded in the returned LinkResult.
func (c *Checker) Probe(ctx context.Context, link string) LinkResult {
	logger := c.logger.With(slog.String("url", link))
	result := LinkResult{
		OriginalURL: link,
		FinalURL:    link,
		StatusText:  StatusTextError,
	}

	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		logger.WarnContext(ctx, "Could not create HTTP request", slog.Any("error", err))
		return result
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.probeClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			result.Status = http.StatusRequestTimeout
			result.StatusText = StatusTextTimeout
		} else {
			result.StatusText = StatusTextFetchError
		}
		logger.WarnContext(ctx, "Link is unreachable",
			slog.String("status_text", result.StatusText),
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("error", err),
		)
		return result
	}
	defer resp.Body.Close()

	result.FinalURL = resp.Request.URL.String()
	result.Status = resp.StatusCode
	result.StatusText = reasonPhrase(resp)

	logger.DebugContext(ctx, "Link checked",
		slog.Int("status_code", result.Status),
		slog.String("final_url", result.FinalURL),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// reasonPhrase returns the server supplied reason phrase, or the standard
// text for the code when the server sent none.
func reasonPhrase(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	resp.Body.Close()
}
