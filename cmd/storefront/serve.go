package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"Storefront/internal/app"
	"Storefront/internal/auth"
	"Storefront/internal/catalog"
	"Storefront/internal/config"
	"Storefront/pkg/kit"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Seed the catalog and serve the storefront API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return err
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	log.Info("config loaded", cfg.Fields()...)

	products, err := catalog.LoadDataset(cfg.SeedFile)
	if err != nil {
		log.Error("load dataset failed", zap.Error(err))
		return err
	}
	if err := catalog.CheckDataset(products); err != nil {
		log.Error("dataset rejected", zap.String("seed_file", cfg.SeedFile), zap.Error(err))
		return err
	}

	store := catalog.NewStore()
	store.Seed(products)
	log.Info("catalog seeded", zap.Int("products", store.Len()))

	gate, err := auth.NewGate(cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("admin gate: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := app.NewHandler(app.Deps{
		Store:      store,
		Gate:       gate,
		JWT:        auth.NewTokenMaker(cfg.Session.Secret),
		SessionTTL: cfg.Session.TTL,
		OrderURL:   cfg.Order.URL,
	}, app.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := kit.RunHTTPServer(ctx, cfg.HTTPAddr, h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
		return err
	}
	return nil
}
