package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"bio-link-checker/internal/linkcheck"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestIDFromContext returns the ID assigned by RequestIDMiddleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDMiddleware tags every request with an ID, reusing the caller's
// X-Request-Id when present, and echoes it in the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// LoggingMiddleware logs the start and end of every request.
func LoggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := NewStatusResponseWriter(w)
			reqLogger := logger.With(
				slog.String("request_id", RequestIDFromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			reqLogger.DebugContext(r.Context(), "Request start", slog.String("remote_addr", r.RemoteAddr))
			next.ServeHTTP(srw, r)
			reqLogger.InfoContext(r.Context(), "Request end",
				slog.Int("status", srw.statusCode),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// StatusResponseWriter wraps ResponseWriter to capture the status code.
type StatusResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func NewStatusResponseWriter(w http.ResponseWriter) *StatusResponseWriter {
	return &StatusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (srw *StatusResponseWriter) WriteHeader(code int) {
	if srw.wroteHeader {
		return
	}
	srw.statusCode = code
	srw.wroteHeader = true
	srw.ResponseWriter.WriteHeader(code)
}

func (srw *StatusResponseWriter) Write(b []byte) (int, error) {
	srw.wroteHeader = true
	return srw.ResponseWriter.Write(b)
}

// RecoveryMiddleware turns a panic into the generic error response and logs
// the stack. A response that has already started is left as is.
func RecoveryMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			srw := NewStatusResponseWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "Internal Server Error",
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.Any("error", fmt.Errorf("panic: %v", rec)),
					slog.Bool("response_started", srw.wroteHeader),
					slog.String("trace", string(debug.Stack())),
				)
				if srw.wroteHeader {
					return
				}
				respondWithError(srw, http.StatusInternalServerError, linkcheck.ReasonUnexpected)
			}()
			next.ServeHTTP(srw, r)
		})
	}
}

// CORSMiddleware lets browser front ends call the API from any origin.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, X-Request-Id")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Date, X-Request-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
