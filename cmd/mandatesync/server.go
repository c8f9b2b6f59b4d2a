package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/mandate-sync/internal/infra/http/handlers"
	opsmetrics "github.com/xavierca1/mandate-sync/internal/infra/http/middleware"
)

func newOpsRouter(health *handlers.HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(opsmetrics.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/health", health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// serveOps roda até o ctx ser cancelado
func serveOps(ctx context.Context, addr string, health *handlers.HealthHandler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newOpsRouter(health),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("🔥 Servidor de operação em %s (/health, /metrics)", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("❌ Servidor de operação parou: %v", err)
	}
}
