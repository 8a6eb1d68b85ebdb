package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joelson-hub/Pianelsenhas/internal/auth"
	"github.com/joelson-hub/Pianelsenhas/internal/config"
	"github.com/joelson-hub/Pianelsenhas/internal/httpapi"
	"github.com/joelson-hub/Pianelsenhas/internal/store/postgres"
	"github.com/joelson-hub/Pianelsenhas/internal/telemetry"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	shutdownTracing := telemetry.Setup("painelsenhas")

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	handler := httpapi.NewHandler(store, tokens)
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:    cfg.RateLimitPerMinute,
		IPBurst:        cfg.RateLimitBurst,
		LoginPerMinute: cfg.LoginRateLimitPerMinute,
		LoginBurst:     cfg.LoginRateLimitBurst,
	})

	routes := httpapi.LoggingMiddleware(limiter.Middleware(handler.Routes()))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(routes, "painelsenhas"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("painelsenhas listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("tracing shutdown error: %v", err)
	}
}
