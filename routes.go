package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all the API routes. CORS wraps the whole router so
// preflight requests are answered for every path.
func SetupRoutes(server *Server, gatherer prometheus.Gatherer) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger(server.log))

	upload := http.Handler(http.HandlerFunc(server.uploadBundle))
	if n := server.cfg.Server.RateLimitPerMinute; n > 0 {
		upload = newIPRateLimiter(n).middleware(upload)
	}

	// API routes
	r.Handle("/upload", upload).Methods("POST")
	r.HandleFunc("/uploads", server.listUploads).Methods("GET")
	r.HandleFunc("/uploads/{id}", server.getUpload).Methods("GET")
	r.HandleFunc("/health", server.healthCheck).Methods("GET")
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// Serve static files
	if dir := server.cfg.Server.StaticDir; dir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(dir)))
	}

	return enableCORS(server.cfg.Server.AllowedOrigin)(r)
}
