// Package paginate reads limit/offset query parameters into the request context.
package paginate

import (
	"context"
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Page struct {
	Limit  int
	Offset int
}

type ctxKey struct{}

// Middleware parses ?limit= and ?offset=. Missing or invalid values fall
// back to the defaults; limit is capped at MaxLimit.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := Page{Limit: DefaultLimit}
		q := r.URL.Query()
		if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
			p.Limit = min(n, MaxLimit)
		}
		if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
			p.Offset = n
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, p)))
	})
}

// FromContext returns the page set by Middleware, or the default page.
func FromContext(ctx context.Context) Page {
	if p, ok := ctx.Value(ctxKey{}).(Page); ok {
		return p
	}

	return Page{Limit: DefaultLimit}
}
