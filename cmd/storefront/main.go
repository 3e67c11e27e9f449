package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/velora-shop/storefront/internal/api"
	"github.com/velora-shop/storefront/internal/store"
	"github.com/velora-shop/storefront/pkg/config"
	"github.com/velora-shop/storefront/pkg/logger"
	"github.com/velora-shop/storefront/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"backend": cfg.State.Backend,
	})

	saver, closeSaver, err := newSaver(ctx, cfg.State)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap state backend", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeSaver(); err != nil {
			logg.Error(ctx, "error closing state backend", err)
		}
	}()

	clientMetrics := metrics.NewClientMetrics(prometheus.NewRegistry())

	client, err := api.NewClient(cfg.API, logg, clientMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create api client", err)
		os.Exit(1)
	}

	st, err := store.New(store.Params{
		Backend: client,
		Saver:   saver,
		Logger:  logg,
		Metrics: clientMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create store", err)
		os.Exit(1)
	}

	logg.Info(ctx, "storefront session ready")

	if err := st.RefreshReferenceData(ctx); err != nil {
		logg.Warn(ctx, "reference data partially unavailable")
	}

	products, err := st.LoadProducts(ctx, api.ProductQuery{})
	if err != nil {
		logg.Error(ctx, "failed to load products", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"products":   len(products),
		"categories": len(st.Categories()),
		"brands":     len(st.Brands()),
		"cart_items": st.Len(),
		"cart_total": st.TotalPrice().StringFixed(2),
	}), "catalog loaded")
}
