package middleware

import (
	"context"
	"net/http"

	"github.com/otcheredev/clinic-desk/internal/navigation"
)

// Checker decides navigation; *navigation.Guard implements it
type Checker interface {
	Check(ctx context.Context, target navigation.Route) navigation.Decision
}

// Guard redirects requests for console pages the current session may not
// open. Paths outside any page pass through.
func Guard(checker Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, ok := navigation.Lookup(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			decision := checker.Check(r.Context(), route)
			if !decision.Allow {
				http.Redirect(w, r, decision.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
