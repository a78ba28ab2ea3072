package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bio-link-checker/internal/linkcheck"
)

const maxRequestBytes = 1 << 20

// Scanner runs one link scan. *linkcheck.Checker implements it.
type Scanner interface {
	Scan(ctx context.Context, targetURL string) ([]linkcheck.LinkResult, error)
}

type APIHandler struct {
	scanner Scanner
	logger  *slog.Logger
}

func NewAPIHandler(logger *slog.Logger, scanner Scanner) *APIHandler {
	return &APIHandler{scanner: scanner, logger: logger}
}

type CheckLinksRequest struct {
	URL string `json:"url"`
}

type CheckLinksResponse struct {
	Links []linkcheck.LinkResult `json:"links"`
}

func (h *APIHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

// CheckLinksHandler scans the page named in the request body and returns
// either every link result or a single error.
func (h *APIHandler) CheckLinksHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With(slog.String("request_id", RequestIDFromContext(ctx)))

	var req CheckLinksRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "url" {
			logger.WarnContext(ctx, "Rejected non-string url", slog.String("json_type", typeErr.Value))
			respondWithError(w, http.StatusBadRequest, linkcheck.Reason(linkcheck.ErrInvalidURL))
			return
		}
		logger.ErrorContext(ctx, "Failed to decode check-links request", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, linkcheck.ReasonUnexpected)
		return
	}

	links, err := h.scanner.Scan(ctx, req.URL)
	if err != nil {
		status := statusForScanError(err)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(ctx, "Link scan failed", slog.String("url", req.URL), slog.Any("error", err))
		} else {
			logger.WarnContext(ctx, "Rejected link scan", slog.String("url", req.URL), slog.Any("error", err))
		}
		respondWithError(w, status, linkcheck.Reason(err))
		return
	}
	if links == nil {
		links = []linkcheck.LinkResult{}
	}

	logger.InfoContext(ctx, "Link scan succeeded", slog.String("url", req.URL), slog.Int("links", len(links)))
	respondWithJSON(w, http.StatusOK, CheckLinksResponse{Links: links})
}

func statusForScanError(err error) int {
	if errors.Is(err, linkcheck.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
