package metrics

import "net/http"

// RequestMiddleware returns chi-compatible middleware that counts every request in m.
func RequestMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			m.IncHTTPRequests()
		})
	}
}
