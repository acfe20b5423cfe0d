package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"pharmasales/m/internal/api"
	"pharmasales/m/internal/config"
	"pharmasales/m/internal/database"
	"pharmasales/m/internal/events"
	"pharmasales/m/internal/gateway/inventory"
	"pharmasales/m/internal/gateway/patient"
	"pharmasales/m/internal/metrics"
	"pharmasales/m/internal/migrations"
	"pharmasales/m/internal/reconcile"
	"pharmasales/m/internal/sales"
	"pharmasales/m/internal/seed"
	"pharmasales/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	seed.LoadOperators(db, cfg.OperatorsCSV)

	patients := patient.New(cfg.Patient)
	inv := inventory.New(cfg.Inventory)
	saleStore := store.NewSaleStore(db)

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	svc := sales.NewService(patients, inv, saleStore,
		sales.WithPublisher(publisher),
		sales.WithMetrics(m),
		sales.WithLineConcurrency(cfg.LineConcurrency),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := reconcile.New(saleStore, publisher, m, cfg.ReconcileInterval, cfg.ReconcileGrace)
	go job.Run(ctx)

	handler := api.New(api.Deps{
		DB:             db,
		Secret:         cfg.Secret,
		Sales:          svc,
		Inventory:      inv,
		Patients:       patients,
		Metrics:        m,
		MetricsHandler: metrics.Handler(prometheus.DefaultGatherer),
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: handler.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("sales service starting on :%s", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
