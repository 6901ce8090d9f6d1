package main

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireAPIKey is middleware that validates the Bearer token in the
// Authorization header before allowing a request through to the handler.
func requireAPIKey(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Lock the server down if the operator forgot to set the key.
			if expectedKey == "" {
				writeError(w, http.StatusInternalServerError, "Server configuration error: API_SECRET_KEY not set")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedKey)) != 1 {
				writeError(w, http.StatusUnauthorized, "Unauthorized: Invalid or missing API Key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// enableCORS sets CORS headers for the dashboard and the browser extension.
// Access-Control-Allow-Origin is "*"; restrict it in production.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
