package middleware

import (
	"context"
	"net/http"
	"time"
)

// Detached runs the handler on a context that is not cancelled when the client
// goes away and ends after timeout instead.
func Detached(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
