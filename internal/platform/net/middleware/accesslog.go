package middleware

import (
	"net/http"
	"time"

	"hamfinder/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// AccessLogOptions configures the zerolog access log
type AccessLogOptions struct {
	// Slow escalates requests at or over it to warn, 0 disables
	Slow time.Duration
}

type statusRecorder struct {
	http.ResponseWriter
	code    int
	written int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.written += n
	return n, err
}

// AccessLogZerolog emits one "request done" line per request on the request scoped logger.
// 5xx logs at error, 4xx and slow requests at warn
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			began := time.Now()
			next.ServeHTTP(rec, r)
			took := time.Since(began)
			slow := opt.Slow > 0 && took >= opt.Slow

			l := logger.C(r.Context())
			e := l.Info()
			if rec.code >= 500 {
				e = l.Error()
			} else if rec.code >= 400 || slow {
				e = l.Warn()
			}
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			e.Str("method", r.Method).
				Str("route", route).
				Int("status", rec.code).
				Int("bytes", rec.written).
				Dur("took", took).
				Bool("slow", slow).
				Msg("request done")
		})
	}
}
