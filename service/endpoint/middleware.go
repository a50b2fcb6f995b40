package endpoint

import (
	"log"
	"net/http"
	"time"

	"github.com/viant/asyncweb/internal/clock"
	"github.com/viant/asyncweb/tracing"
)

type middleware func(http.Handler) http.Handler

// chain applies middlewares so that the first one runs outermost.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(data []byte) (int, error) {
	n, err := r.ResponseWriter.Write(data)
	r.size += n
	return n, err
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				log.Printf("[endpoint] recovered panic in %v %v: %v", r.Method, r.URL.Path, p)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.Extract(r.Context(), r.Header)
		ctx, span := tracing.StartSpan(ctx, r.Method+" "+r.URL.Path, tracing.KindServer)
		span.WithAttributes(map[string]string{
			"http.method": r.Method,
			"http.target": r.URL.Path,
		})
		rec := record(w)
		defer func() {
			span.SetStatusFromHTTPCode(rec.status)
			span.End()
		}()
		next.ServeHTTP(rec, r.WithContext(ctx))
	})
}

func logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clock.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)
		log.Printf("[endpoint] %v %v -> %d (%d bytes, %s)", r.Method, r.URL.Path, rec.status, rec.size, clock.Since(start).Round(time.Millisecond))
	})
}
