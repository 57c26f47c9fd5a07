// ABOUTME: Request logging middleware for the dashboard in the key=value log.Printf style used by the CLI.
// ABOUTME: Wraps the response with chi's WrapResponseWriter and tags each line with chi's request id.
package web

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// quietPaths are polled by monitors and only logged when they fail.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// webRequestLogger logs one line per request. It must run after
// middleware.RequestID so the id is in the context.
func webRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if quietPaths[r.URL.Path] && status < http.StatusBadRequest {
			return
		}
		log.Printf("web request id=%s method=%s path=%s query=%q status=%d bytes=%d duration=%s",
			middleware.GetReqID(r.Context()),
			r.Method,
			r.URL.Path,
			r.URL.RawQuery,
			status,
			ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond),
		)
	})
}
