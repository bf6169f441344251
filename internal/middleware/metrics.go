package middleware

import (
	"net/http"
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/metrics"
)

// Metrics records every request against the route pattern it matched.
func Metrics(m *metrics.Metrics, mux *http.ServeMux, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		_, pattern := mux.Handler(r)
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		m.ObserveRequest(pattern, r.Method, rec.code(), time.Since(start))
	})
}
