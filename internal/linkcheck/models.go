package linkcheck

import "net/http"

// Labels used in LinkResult.StatusText when no response was obtained.
const (
	StatusTextTimeout    = "Timeout"
	StatusTextFetchError = "Fetch Error"
	StatusTextError      = "Error"
)

// LinkResult is the outcome of probing one unique link found on a page.
type LinkResult struct {
	OriginalURL string `json:"originalUrl"`
	FinalURL    string `json:"finalUrl"`
	Status      int    `json:"status"`
	StatusText  string `json:"statusText"`
}

// Category groups a LinkResult the way a reader of the report sees it.
type Category string

const (
	CategoryOK       Category = "ok"
	CategoryRedirect Category = "redirect"
	CategoryBroken   Category = "broken"
	CategoryTimeout  Category = "timeout"
	CategoryError    Category = "error"
)

// Categories lists every Category in display order.
var Categories = []Category{
	CategoryOK,
	CategoryRedirect,
	CategoryBroken,
	CategoryTimeout,
	CategoryError,
}

func (r LinkResult) Category() Category {
	switch {
	case r.Status == 0:
		return CategoryError
	case r.Status == http.StatusRequestTimeout && r.StatusText == StatusTextTimeout:
		return CategoryTimeout
	case r.Status >= 200 && r.Status < 300:
		return CategoryOK
	case r.Status >= 300 && r.Status < 400:
		return CategoryRedirect
	case r.Status >= 400:
		return CategoryBroken
	}
	return CategoryError
}

// Redirected reports whether the probe ended on a different URL than it
// started from.
func (r LinkResult) Redirected() bool {
	return r.FinalURL != r.OriginalURL
}

// Broken reports whether the link should be counted as broken: no response
// at all or a status of 400 and above.
func (r LinkResult) Broken() bool {
	return r.Status == 0 || r.Status >= http.StatusBadRequest
}
