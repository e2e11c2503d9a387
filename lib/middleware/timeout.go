package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Route names one operation by method and exact request path.
type Route struct {
	Method string
	Path   string
}

// Timeout applies chi's Timeout middleware to every request except the
// exempt routes. Handlers of exempt routes must bound their own work.
func Timeout(d time.Duration, exempt ...Route) func(http.Handler) http.Handler {
	timeout := chimiddleware.Timeout(d)
	skip := make(map[Route]bool, len(exempt))
	for _, route := range exempt {
		skip[route] = true
	}

	return func(next http.Handler) http.Handler {
		limited := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[Route{Method: r.Method, Path: r.URL.Path}] {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
