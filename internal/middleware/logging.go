package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logging returns a middleware that logs every request.
// It logs the method, path, user ID, status, duration and request id.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			fields := appendLoggerFields(r.Context(),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"response_size_bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			)

			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.ErrorContext(r.Context(), "Request failed", fields...)
			case rec.status >= http.StatusBadRequest:
				logger.WarnContext(r.Context(), "Request rejected", fields...)
			default:
				logger.InfoContext(r.Context(), "Request completed", fields...)
			}
		})
	}
}

func appendLoggerFields(ctx context.Context, base ...any) []any {
	if requestID, ok := RequestIDFromContext(ctx); ok && requestID != "" {
		base = append(base, "request_id", requestID)
	}
	if userID, ok := GetUserID(ctx); ok {
		base = append(base, "user_id", userID)
	}
	return base
}

// Recover turns handler panics into 500 responses.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.ErrorContext(r.Context(), "Handler panicked", appendLoggerFields(r.Context(), "panic", p, "path", r.URL.Path)...)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
