package server

import (
	"context"
	"net/http"
	"strings"
)

type roleContextKey struct{}

// withRole resolves the caller's role from the X-Role header. A real
// deployment fronts this server with an identity proxy that sets the
// header; absent means anonymous.
func withRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := strings.TrimSpace(r.Header.Get("X-Role"))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), roleContextKey{}, role)))
	})
}

func currentRole(ctx context.Context) string {
	role, _ := ctx.Value(roleContextKey{}).(string)
	return role
}
