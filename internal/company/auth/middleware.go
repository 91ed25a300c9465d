package auth

import (
	"errors"
	"net/http"
	"strings"
)

type route struct {
	method string
	path   string
	prefix bool
}

// protectedRoutes mirror ProtectedMethods on the HTTP gateway.
var protectedRoutes = []route{
	{method: http.MethodPost, path: "/v1/companies"},
	{method: http.MethodGet, path: "/v1/companies"},
	{method: http.MethodPost, path: "/v1/enrichments"},
	{method: http.MethodPost, path: "/v1/content"},
	{method: http.MethodGet, path: "/v1/content/", prefix: true},
}

// HTTPMiddleware rejects unauthenticated calls to protected routes before
// they reach the gateway.
func HTTPMiddleware(next http.Handler, jwtSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isProtectedRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := extractTokenFromHeader(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := validateToken(tokenString, jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.Subject)))
	})
}

func extractTokenFromHeader(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header required")
	}
	return bearerToken(authHeader)
}

func isProtectedRequest(r *http.Request) bool {
	path := strings.TrimSuffix(r.URL.Path, "/")
	for _, rt := range protectedRoutes {
		if r.Method != rt.method {
			continue
		}
		if rt.prefix && strings.HasPrefix(r.URL.Path, rt.path) {
			return true
		}
		if !rt.prefix && path == rt.path {
			return true
		}
	}
	return false
}
