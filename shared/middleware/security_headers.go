package middleware

import (
	"net/http"
)

// SecurityHeaders adds the headers every response carries.
// isHTTPS: if true, adds Strict-Transport-Security header
func SecurityHeaders(isHTTPS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()

			// Only our own pages may frame the board
			headers.Set("X-Frame-Options", "SAMEORIGIN")
			headers.Set("X-DNS-Prefetch-Control", "off")
			headers.Set("Referrer-Policy", "same-origin")
			headers.Set("X-Content-Type-Options", "nosniff")

			if isHTTPS {
				headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
