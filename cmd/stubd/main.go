package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/velora-shop/storefront/internal/stub"
	"github.com/velora-shop/storefront/pkg/config"
	"github.com/velora-shop/storefront/pkg/logger"
)

// stubd serves the in-memory marketplace fixture backend, for local
// development against a predictable catalog.
func main() {
	logg := logger.New(logger.Options{ServiceName: "stubd"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	port := os.Getenv(config.EnvStubPort)
	if port == "" {
		port = "8089"
	}
	addr := ":" + port

	backend := stub.NewServer()
	ctx := logg.WithFields(context.Background(), map[string]any{
		"addr":  addr,
		"token": backend.Token(),
	})
	logg.Info(ctx, "starting stub backend")

	server := &http.Server{
		Addr:    addr,
		Handler: backend.Router(),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "stub backend stopped unexpectedly", err)
		os.Exit(1)
	}
}
