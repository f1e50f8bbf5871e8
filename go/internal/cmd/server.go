package main

import (
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// setupServer assembles the HTTP surface: auction API, gateway routes and
// a health check, wrapped in CORS and served over h2c.
func setupServer(services *Services) *http.Server {
	mux := http.NewServeMux()
	services.Handlers.RegisterRoutes(mux)
	services.Gateway.RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
	}).Handler(mux)

	return &http.Server{
		Addr:    ":" + getEnv("PORT", "8080"),
		Handler: h2c.NewHandler(corsHandler, &http2.Server{}),
	}
}
