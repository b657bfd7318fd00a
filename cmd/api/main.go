package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/jwalitptl/lims-api/internal/catalog"
	"github.com/jwalitptl/lims-api/internal/config"
	catalogHandler "github.com/jwalitptl/lims-api/internal/handler/catalog"
	orderHandler "github.com/jwalitptl/lims-api/internal/handler/order"
	patientHandler "github.com/jwalitptl/lims-api/internal/handler/patient"
	"github.com/jwalitptl/lims-api/internal/middleware"
	"github.com/jwalitptl/lims-api/internal/notify"
	"github.com/jwalitptl/lims-api/internal/router"
	"github.com/jwalitptl/lims-api/internal/snapshot"
	"github.com/jwalitptl/lims-api/internal/store"
	"github.com/jwalitptl/lims-api/pkg/logger"
	"github.com/jwalitptl/lims-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:  level,
		Pretty: cfg.Log.Pretty,
		Output: os.Stdout,
	})

	// Snapshot backend and store
	adapter, err := snapshot.Open(cfg.Snapshot.ToSnapshotConfig())
	if err != nil {
		log.Fatal(err, "failed to open snapshot backend")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics("lims", registry)

	st := store.New(context.Background(), adapter,
		store.WithLogger(log),
		store.WithMetrics(m),
	)

	// Static test catalog
	cat, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		log.Fatal(err, "failed to load test catalog")
	}

	// Delivery notifications
	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.SMTP.Enabled {
		notifier = notify.NewEmailNotifier(notify.EmailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
	}

	r := router.NewRouter(router.Config{
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		CORS:              middleware.DefaultCORSConfig(),
		Gatherer:          registry,
	},
		patientHandler.NewHandler(st),
		orderHandler.NewHandler(st, cat, notifier),
		catalogHandler.NewHandler(cat),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "server forced to shutdown")
	}

	// Flush the final snapshot before exiting.
	if err := st.Close(); err != nil {
		log.Error(err, "failed to close store")
	}

	log.Info("server exited properly")
}
