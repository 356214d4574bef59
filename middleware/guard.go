package middleware

import (
	"context"
	"net/http"
	"strings"
)

type bearerContextKey struct{}

// BearerFromContext returns the bearer token Guard extracted from the
// request, for handlers that forward it to the dashboard API.
func BearerFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerContextKey{}).(string)
	return token, ok
}

// Guard rejects requests without a bearer token. Credential verification
// belongs to the remote API; Guard only enforces that dashboard routes
// carry something to verify, and stashes it in the request context.
func Guard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), bearerContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
