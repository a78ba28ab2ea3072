package linkcheck

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the parent of every error about the scan target
	// itself.
	ErrInvalidInput = errors.New("invalid input")
	ErrURLRequired  = fmt.Errorf("%w: url is required", ErrInvalidInput)
	ErrInvalidURL   = fmt.Errorf("%w: invalid url", ErrInvalidInput)

	// ErrInvalidLink is returned by Normalize for hrefs that cannot become a
	// probeable absolute URL. Extraction skips such links.
	ErrInvalidLink       = errors.New("invalid link")
	ErrEmptyLink         = fmt.Errorf("%w: empty href", ErrInvalidLink)
	ErrUnsupportedScheme = fmt.Errorf("%w: unsupported scheme", ErrInvalidLink)
)

// Messages returned to callers of the check-links boundary.
const (
	ReasonURLRequired = "URL is required"
	ReasonInvalidURL  = "Invalid URL provided"
	ReasonUnexpected  = "An unexpected error occurred."
)

// PageFetchError is returned when the scan target answers with a non-2xx
// status.
type PageFetchError struct {
	URL        string
	StatusCode int
	StatusText string
}

func (e *PageFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %d %s", e.URL, e.StatusCode, e.StatusText)
}

// Reason maps a Scan error to the message shown to the caller.
func Reason(err error) string {
	var fetchErr *PageFetchError
	switch {
	case errors.Is(err, ErrURLRequired):
		return ReasonURLRequired
	case errors.Is(err, ErrInvalidInput):
		return ReasonInvalidURL
	case errors.As(err, &fetchErr):
		return "Failed to fetch URL: " + fetchErr.StatusText
	}
	return ReasonUnexpected
}
