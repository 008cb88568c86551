package middleware

import (
	"net/http"

	"github.com/chris/clothing-swap-settlement/pkg/metrics"
	"github.com/go-chi/chi/v5/middleware"
)

// Instrument records request counts, latency and in-flight requests by route
// pattern so that path parameters do not explode label cardinality.
func Instrument(c *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			done := c.RequestStarted()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				done(r.Method, routePattern(r), status)
			}()
			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
