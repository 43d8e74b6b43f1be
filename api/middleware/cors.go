package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets the storefront call the cart API from the configured origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader, "X-Requested-With"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}).Handler
}
